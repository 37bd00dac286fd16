package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/transfa/griffin-service/internal/app"
	"gopkg.in/yaml.v3"
)

// errFailedResult makes the process exit non-zero after a failed Result was printed.
var errFailedResult = errors.New("operation failed")

func writeResult(w io.Writer, format string, res app.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	case "yaml":
		// Going through JSON keeps the API's hyphenated field names and their order.
		raw, err := json.Marshal(res)
		if err != nil {
			return err
		}
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return err
		}
		blockStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
	if !res.Success {
		return errFailedResult
	}
	return nil
}

// blockStyle drops the flow and quoting styles the JSON source left on every node.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
