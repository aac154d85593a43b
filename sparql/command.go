// Copyright 2025 The CityRes Authors
// SPDX-License-Identifier: Apache-2.0

package sparql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommand is the Jena Fuseki command line client.
const DefaultCommand = "s-query"

// waitDelay bounds how long a cancelled tool may keep its output pipes open.
const waitDelay = 2 * time.Second

// CommandExecutor runs queries through an external SPARQL client, invoked as
//
//	s-query --service <endpoint> --output=csv <query>
//
// The query is passed as a single argument, no shell is involved. CRLF line
// endings in the output are turned into plain newlines.
type CommandExecutor struct {
	command string
}

// NewCommandExecutor returns an executor for command, DefaultCommand when empty.
func NewCommandExecutor(command string) *CommandExecutor {
	if command == "" {
		command = DefaultCommand
	}

	return &CommandExecutor{command: command}
}

// Execute implements Executor.
func (e *CommandExecutor) Execute(ctx context.Context, query, endpoint string) (string, error) {
	cmd := exec.CommandContext(ctx, e.command, "--service", endpoint, "--output=csv", query) // #nosec G204 - command is configured by the operator

	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err == nil {
		return normalizeNewlines(string(out)), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", &QueryError{
			Type:     ErrorTypeTimeout,
			Endpoint: endpoint,
			Message:  "running " + e.command,
			Err:      ctxErr,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := fmt.Sprintf("%s exited with status %d", e.command, exitErr.ExitCode())
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += ": " + s
		}

		return "", &QueryError{Type: ErrorTypeCommand, Endpoint: endpoint, Message: msg, Err: err}
	}

	return "", &QueryError{
		Type:     ErrorTypeCommand,
		Endpoint: endpoint,
		Message:  "running " + e.command,
		Err:      err,
	}
}
