package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/transfa/griffin-service/internal/api"
	"github.com/transfa/griffin-service/internal/app"
	"github.com/transfa/griffin-service/internal/domain"
)

// service is the surface the commands call. *app.Service implements it.
type service interface {
	api.Service
	VerifySandboxKey(ctx context.Context) (*domain.APIKey, error)
}

type serviceFactory func(ctx context.Context, logger *slog.Logger) (service, func(), error)

type cli struct {
	build   serviceFactory
	out     io.Writer
	output  string
	verbose bool
}

func newRootCmd(build serviceFactory, out io.Writer) *cobra.Command {
	c := &cli{build: build, out: out}

	root := &cobra.Command{
		Use:           "griffinctl",
		Short:         "griffinctl - run Griffin banking operations against the sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "json", "Output format (json, yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(c.verifyKeyCmd())
	root.AddCommand(c.accountsCmd())
	root.AddCommand(c.legalPersonsCmd())
	root.AddCommand(c.paymentsCmd())
	root.AddCommand(c.payeesCmd())
	return root
}

// run builds the service, invokes op and prints its outcome.
func (c *cli) run(cmd *cobra.Command, op func(ctx context.Context, svc service) (interface{}, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, closeFn, err := c.build(ctx, newLogger(c.verbose))
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := op(ctx, svc)
	return writeResult(c.out, c.output, app.NewResult(data, err))
}

func invalid(field, message string) error {
	return &app.ValidationError{Field: field, Message: message}
}

func checkSort(sort string, allowed []string) error {
	if !domain.SortAllowed(sort, allowed) {
		return invalid("sort", fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
	}
	return nil
}

// optionalBool parses a tri-state flag value: empty means unset.
func optionalBool(field, raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalid(field, "must be true or false")
	}
	return &v, nil
}

func (c *cli) verifyKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify-key",
		Short: "Check that the configured API key belongs to a sandbox organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.VerifySandboxKey(ctx)
			})
		},
	}
}

func (c *cli) accountsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "accounts", Short: "Bank accounts"}

	var (
		statuses, products       []string
		pooled, sort             string
		beneficiaryURL, ownerURL string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List bank accounts (open accounts unless --status is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				var f domain.BankAccountListFilters
				if len(statuses) == 0 {
					statuses = []string{string(domain.AccountStatusOpen)}
				}
				for _, s := range statuses {
					if !domain.AccountStatus(s).Valid() {
						return nil, invalid("status", fmt.Sprintf("unknown account status %q", s))
					}
					f.Statuses = append(f.Statuses, domain.AccountStatus(s))
				}
				for _, p := range products {
					if !domain.BankProductType(p).Valid() {
						return nil, invalid("product_type", fmt.Sprintf("unknown bank product type %q", p))
					}
					f.ProductTypes = append(f.ProductTypes, domain.BankProductType(p))
				}
				var err error
				if f.PooledFunds, err = optionalBool("pooled_funds", pooled); err != nil {
					return nil, err
				}
				if err := checkSort(sort, domain.BankAccountSorts); err != nil {
					return nil, err
				}
				f.BeneficiaryURL, f.OwnerURL, f.Sort = beneficiaryURL, ownerURL, sort
				return svc.ListBankAccounts(ctx, f)
			})
		},
	}
	list.Flags().StringSliceVar(&statuses, "status", nil, "Account statuses (opening, open, closing, closed)")
	list.Flags().StringSliceVar(&products, "product-type", nil, "Bank product types")
	list.Flags().StringVar(&pooled, "pooled-funds", "", "Filter on pooled funds (true, false)")
	list.Flags().StringVar(&beneficiaryURL, "beneficiary-url", "", "Beneficiary legal person URL")
	list.Flags().StringVar(&ownerURL, "owner-url", "", "Owner legal person URL")
	list.Flags().StringVar(&sort, "sort", "", "Sort order (-created-at, created-at)")

	get := &cobra.Command{
		Use:   "get [account-url]",
		Short: "Fetch one bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.GetBankAccount(ctx, args[0])
			})
		},
	}

	var limit int
	transactions := &cobra.Command{
		Use:   "transactions [account-url]",
		Short: "List recent transactions of a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.ListTransactions(ctx, args[0], limit)
			})
		},
	}
	transactions.Flags().IntVarP(&limit, "limit", "n", app.DefaultTransactionLimit, "Maximum transactions (1-100)")

	var name string
	open := &cobra.Command{
		Use:   "open-operational",
		Short: "Open an operational account and wait for it to leave the opening state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.OpenOperationalAccount(ctx, name)
			})
		},
	}
	open.Flags().StringVar(&name, "name", app.DefaultOperationalAccountName, "Display name")

	cmd.AddCommand(list, get, transactions, open)
	return cmd
}

func (c *cli) legalPersonsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "legal-persons", Short: "Legal persons"}

	var status, sort string
	list := &cobra.Command{
		Use:   "list",
		Short: "List legal persons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				f := domain.LegalPersonListFilters{ApplicationStatus: domain.ApplicationStatus(status), Sort: sort}
				if status != "" && !f.ApplicationStatus.Valid() {
					return nil, invalid("application_status", fmt.Sprintf("unknown application status %q", status))
				}
				if err := checkSort(sort, domain.LegalPersonSorts); err != nil {
					return nil, err
				}
				return svc.ListLegalPersons(ctx, f)
			})
		},
	}
	list.Flags().StringVar(&status, "application-status", "", "Latest verification application status")
	list.Flags().StringVar(&sort, "sort", "", "Sort order")

	get := &cobra.Command{
		Use:   "get [legal-person-url]",
		Short: "Fetch one legal person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.GetLegalPerson(ctx, args[0])
			})
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func (c *cli) paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "payments", Short: "Payments"}

	var direction, rejected, after, before, sort string
	list := &cobra.Command{
		Use:   "list",
		Short: "List payments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				f := domain.PaymentListFilters{Direction: domain.PaymentDirection(direction), CreatedAfter: after, CreatedBefore: before, Sort: sort}
				if direction != "" && !f.Direction.Valid() {
					return nil, invalid("direction", fmt.Sprintf("unknown payment direction %q", direction))
				}
				var err error
				if f.Rejected, err = optionalBool("rejected", rejected); err != nil {
					return nil, err
				}
				if err := checkSort(sort, domain.PaymentSorts); err != nil {
					return nil, err
				}
				return svc.ListPayments(ctx, f)
			})
		},
	}
	list.Flags().StringVar(&direction, "direction", "", "inbound-payment or outbound-payment")
	list.Flags().StringVar(&rejected, "rejected", "", "Filter on rejection (true, false)")
	list.Flags().StringVar(&after, "created-after", "", "ISO-8601 lower bound")
	list.Flags().StringVar(&before, "created-before", "", "ISO-8601 upper bound")
	list.Flags().StringVar(&sort, "sort", "", "Sort order (-created-at, created-at)")

	get := &cobra.Command{
		Use:   "get [payment-url]",
		Short: "Fetch one payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.GetPayment(ctx, args[0])
			})
		},
	}

	var in app.CreateAndSubmitInput
	var scheme string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a payment and submit it to a scheme",
		Long: `Create a payment from --source and submit it.

Exactly one target is required: --payee-url, --target-account-url, or all of
--account-holder, --account-number and --bank-id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				in.Scheme = domain.PaymentScheme(scheme)
				return svc.CreateAndSubmitPayment(ctx, in)
			})
		},
	}
	create.Flags().StringVar(&in.SourceAccountURL, "source", "", "Source bank account URL")
	create.Flags().StringVar(&in.Amount, "amount", "", "Decimal amount, e.g. 10.50")
	create.Flags().StringVar(&in.Currency, "currency", "GBP", "Currency code")
	create.Flags().StringVar(&in.Reference, "reference", "", "Payment reference")
	create.Flags().StringVar(&scheme, "scheme", string(domain.SchemeFPS), "Payment scheme (fps, book-transfer)")
	create.Flags().StringVar(&in.PayeeURL, "payee-url", "", "Saved payee URL")
	create.Flags().StringVar(&in.TargetAccountURL, "target-account-url", "", "Bank account URL in the same organization")
	create.Flags().StringVar(&in.AccountHolder, "account-holder", "", "External account holder name")
	create.Flags().StringVar(&in.AccountNumber, "account-number", "", "External account number")
	create.Flags().StringVar(&in.BankID, "bank-id", "", "External sort code")

	var orphanLimit int
	orphaned := &cobra.Command{
		Use:   "orphaned",
		Short: "List payments that were created but never submitted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.ListOrphanedPayments(ctx, orphanLimit)
			})
		},
	}
	orphaned.Flags().IntVarP(&orphanLimit, "limit", "n", 0, "Maximum records (0 for the default)")

	resolve := &cobra.Command{
		Use:   "resolve [workflow-id]",
		Short: "Mark an orphaned payment as handled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				if err := svc.ResolveOrphanedPayment(ctx, args[0]); err != nil {
					return nil, err
				}
				return map[string]string{"id": args[0], "status": "resolved"}, nil
			})
		},
	}

	cmd.AddCommand(list, get, create, orphaned, resolve)
	return cmd
}

func (c *cli) payeesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "payees", Short: "Payees"}

	list := &cobra.Command{
		Use:   "list [legal-person-url]",
		Short: "List the payees of a legal person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.ListPayees(ctx, args[0])
			})
		},
	}

	get := &cobra.Command{
		Use:   "get [payee-url]",
		Short: "Fetch one payee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd, func(ctx context.Context, svc service) (interface{}, error) {
				return svc.GetPayee(ctx, args[0])
			})
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}
