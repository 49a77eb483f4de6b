package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokfactory/internal/cli/output"
	"github.com/yndnr/tokfactory/pkg/tokfactory"
)

// ExitAuditFailed is the exit code of an audit that found problems.
const ExitAuditFailed = 2

// AuditCommand returns the audit command.
func AuditCommand() *cli.Command {
	return &cli.Command{
		Name:   "audit",
		Usage:  "Check supply conservation for every token",
		Action: audit,
	}
}

type auditReport struct {
	Results          []tokfactory.AuditResult     `json:"results" yaml:"results"`
	RecoveryFailures []tokfactory.RecoveryFailure `json:"recovery_failures,omitempty" yaml:"recovery_failures,omitempty"`
}

func (r *auditReport) violations() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK {
			n++
		}
	}
	return n
}

func (r *auditReport) Table() *output.Table {
	table := output.NewTable("BATCH", "ADDRESS", "STATE", "SUPPLY", "HOLDERS", "STATUS")
	for _, res := range r.Results {
		status := "ok"
		if !res.OK {
			status = res.Error
		}
		table.AddRow(
			strconv.FormatUint(uint64(res.BatchID), 10),
			string(res.Address),
			res.State.String(),
			strconv.FormatUint(res.Supply, 10),
			strconv.Itoa(res.Holders),
			status,
		)
	}
	for _, rf := range r.RecoveryFailures {
		table.AddRow("", rf.Key, "", "", "", "unreadable: "+rf.Error)
	}
	return table
}

func audit(c *cli.Context) error {
	f, err := openFactory(c)
	if err != nil {
		return err
	}
	defer f.Close()

	results, err := f.Audit(c.Context)
	if err != nil {
		return err
	}

	report := &auditReport{Results: results, RecoveryFailures: f.RecoveryFailures()}
	if err := render(c, report); err != nil {
		return err
	}

	violations, unreadable := report.violations(), len(report.RecoveryFailures)
	if violations > 0 || unreadable > 0 {
		return cli.Exit(fmt.Sprintf("audit failed: %d violations, %d unreadable records", violations, unreadable), ExitAuditFailed)
	}
	return nil
}
