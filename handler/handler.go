// Package handler exposes the command-line surface. Commands parse
// flags, call the service layer, and render Japanese display text on
// stdout. Failures are printed on stderr and reported through the
// process exit code.
package handler

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/od-kfujiwara/tosho-kanri-system/config"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/jsonlog"
	"github.com/od-kfujiwara/tosho-kanri-system/internal/validator"
	"github.com/od-kfujiwara/tosho-kanri-system/service"
)

type Handler struct {
	config  config.Config
	logger  *jsonlog.Logger
	service service.Service
	stdout  io.Writer
	stderr  io.Writer
	now     func() time.Time
}

// New creates a Handler.
func New(cfg config.Config, logger *jsonlog.Logger, service service.Service) *Handler {
	return &Handler{
		config:  cfg,
		logger:  logger,
		service: service,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		now:     time.Now,
	}
}

func (h *Handler) today() string {
	return h.now().Format(validator.DateLayout)
}

// Execute runs one command and returns the process exit code.
func (h *Handler) Execute(args []string) int {
	root := h.rootCommand()
	root.SetArgs(args)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(h.stderr, "エラー: %s\n", err)
		return 1
	}
	return 0
}

func (h *Handler) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tosho [entity] [action]",
		Short: "図書管理システム",
		Long: "図書管理システム\n\n" +
			"エンティティ:\n" +
			"  book  - 書籍管理\n" +
			"  user  - 利用者管理\n" +
			"  loan  - 貸出・返却管理",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.AddCommand(h.bookCommand())
	cmd.AddCommand(h.userCommand())
	cmd.AddCommand(h.loanCommand())
	return cmd
}

// intOption converts a numeric flag value the way the commands expect:
// empty stays zero and garbage becomes zero, leaving range checks to
// field validation so the error message stays in Japanese.
func intOption(value string) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
