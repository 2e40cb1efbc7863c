// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	puzzleimport "github.com/tomtom215/tactica/internal/import"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "import", "select-daily"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err=%v)", name, err)
		}
	}
}

// Argument validation runs before configuration is loaded, so these cases
// never touch a store.
func TestImportCmd_RejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing pipeline", args: []string{"import"}, want: "accepts 1 arg"},
		{name: "unknown pipeline", args: []string{"import", "openings"}, want: "unknown pipeline"},
		{name: "too many", args: []string{"import", "puzzles", "themes"}, want: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs(tt.args)
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})

			err := root.Execute()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Execute() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestSelectDailyCmd_RejectsArguments(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"select-daily", "extra"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unexpected argument")
	}
}

func TestImportCmd_Flags(t *testing.T) {
	cmd := newImportCmd(&app{})
	for _, name := range []string{"archive", "dry-run"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not defined", name)
		}
	}
}

func TestWriteSummary_RunOrder(t *testing.T) {
	now := time.Now()
	last := map[puzzleimport.Pipeline]*puzzleimport.ImportStats{
		puzzleimport.PipelineConnect: {Pipeline: puzzleimport.PipelineConnect, Linked: 4, StartTime: now, EndTime: now.Add(time.Second)},
		puzzleimport.PipelinePuzzles: {Pipeline: puzzleimport.PipelinePuzzles, Inserted: 2, StartTime: now, Error: "archive truncated"},
	}

	var buf bytes.Buffer
	if err := writeSummary(&buf, last); err != nil {
		t.Fatalf("writeSummary: %v", err)
	}

	var got []struct {
		Pipeline puzzleimport.Pipeline `json:"pipeline"`
		Linked   int64                 `json:"linked"`
		Status   string                `json:"status"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Pipeline != puzzleimport.PipelinePuzzles || got[1].Pipeline != puzzleimport.PipelineConnect {
		t.Errorf("order = [%s %s], want [puzzles connect]", got[0].Pipeline, got[1].Pipeline)
	}
	if got[0].Status != "failed" || got[1].Status != "completed" {
		t.Errorf("statuses = [%s %s], want [failed completed]", got[0].Status, got[1].Status)
	}
	if got[1].Linked != 4 {
		t.Errorf("connect linked = %d, want 4", got[1].Linked)
	}
}
