// Package process delivers submitted reports to a local command.
//
// The report payload is written to the command's stdin as JSON, and the
// category is also exported as REPORTFLOW_REPORT_CATEGORY. A zero exit status
// means the report was accepted. Report fields are never passed as arguments.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/ports"
)

// maxStderr bounds the stderr excerpt kept in errors.
const maxStderr = 512

// Submitter runs Config.Command once per report.
type Submitter struct {
	config Config
}

var _ ports.Submitter = (*Submitter)(nil)

func NewSubmitter(config Config) *Submitter {
	return &Submitter{config: config}
}

// Submit runs the command and waits for it. notify is not used: the caller
// owns the submission status.
func (s *Submitter) Submit(ctx context.Context, report domain.Report, _ ports.StatusFunc) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.config.Command, s.config.Args...)
	cmd.Dir = s.config.Dir
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(cmd.Environ(), s.environment(report)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[:maxStderr]
		}
		return fmt.Errorf("submit command %s failed: %w. Stderr: %s", s.config.Command, err, msg)
	}
	return nil
}

func (s *Submitter) environment(report domain.Report) []string {
	keys := make([]string, 0, len(s.config.Environment))
	for k := range s.config.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		env = append(env, k+"="+s.config.Environment[k])
	}
	return append(env, "REPORTFLOW_REPORT_CATEGORY="+report.ReportCategory)
}
