package griffinclient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// orgURLCell holds the organization URL once it has been resolved. A failed lookup
// leaves the cell empty so the next caller tries again.
type orgURLCell struct {
	mu    sync.RWMutex
	value string
	group singleflight.Group
}

func (o *orgURLCell) get() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.value
}

func (o *orgURLCell) set(v string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.value == "" {
		o.value = v
	}
}

// OrganizationURL returns the organization the API key belongs to. The first call
// performs an index lookup; later calls return the memoized value.
func (c *Client) OrganizationURL(ctx context.Context) (string, error) {
	if v := c.org.get(); v != "" {
		return v, nil
	}

	v, err, _ := c.org.group.Do("organization-url", func() (interface{}, error) {
		if v := c.org.get(); v != "" {
			return v, nil
		}
		index, err := c.GetIndex(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to resolve organization URL: %w", err)
		}
		if index.OrganizationURL == "" {
			return "", errors.New("index response has no organization-url")
		}
		c.org.set(index.OrganizationURL)
		return c.org.get(), nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
