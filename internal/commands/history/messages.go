package historycmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-press/internal/history"
)

const (
	updateHistoryMessageType   = "press.history.update"
	collapseHistoryMessageType = "press.history.collapse"
)

// UpdateHistoryCommand appends records for changed files. Candidates are
// taken from Candidates, from the handler's stdin when FromStdin is set, or
// from a listing of the content directory otherwise.
type UpdateHistoryCommand struct {
	Candidates []string `json:"candidates,omitempty"`
	FromStdin  bool     `json:"from_stdin,omitempty"`
	// Collapse runs a collapse pass after the update.
	Collapse bool `json:"collapse,omitempty"`
	// ResultCallback, when set, receives the outcome synchronously.
	ResultCallback func(Result) `json:"-"`
}

// Result carries what an update or collapse run did.
type Result struct {
	Update   *history.UpdateResult
	Collapse *history.CollapseResult
}

// Type implements command.Message.
func (UpdateHistoryCommand) Type() string { return updateHistoryMessageType }

// Validate rejects blank candidates and mixing explicit candidates with stdin.
func (cmd UpdateHistoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Candidates,
			validation.When(cmd.FromStdin, validation.Empty.Error("candidates cannot be combined with stdin")),
			validation.Each(validation.By(func(value any) error {
				if strings.TrimSpace(value.(string)) == "" {
					return validation.NewError("press.history.update.candidate_blank", "candidates must not be blank")
				}
				return nil
			})),
		),
	)
}

// CollapseHistoryCommand compacts the log to one record per file per day.
type CollapseHistoryCommand struct {
	ResultCallback func(Result) `json:"-"`
}

// Type implements command.Message.
func (CollapseHistoryCommand) Type() string { return collapseHistoryMessageType }

// Validate implements command.Message validation; the command has no input.
func (CollapseHistoryCommand) Validate() error { return nil }
