// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session drives one interactive screening session: it presents
// pending records one at a time, collects the phase's criteria answers and a
// decision for each, and persists the full accumulated table after every
// record so an interrupted session loses at most the in-flight record.
//
// The session is single-threaded and human-paced. All operator interaction
// goes through the configured reader and writer, so a scripted input
// sequence exercises the full state machine in tests.
package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// State is the session lifecycle state.
type State int

const (
	StateNotStarted State = iota
	StateResuming
	StateActive
	StatePaused
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateResuming:
		return "resuming"
	case StateActive:
		return "active"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// A progress notice is printed every this many records. A UX affordance
// only; persistence happens after every record regardless.
const progressNoticeEvery = 10

// errInputClosed reports that the operator input ended (EOF). Treated the
// same as an explicit stop: persist what was confirmed, pause the session.
var errInputClosed = fmt.Errorf("operator input closed")

// Config configures one session invocation.
type Config struct {
	// Schema is the phase's criterion schema.
	Schema schema.Schema

	// Records is the record set to screen, in record store order. The
	// session never reorders or skips.
	Records []types.Record

	// ProgressPath is the progress file for this (phase, reviewer)
	// pair. The session is its only writer while it runs.
	ProgressPath string

	// Keywords are flagged visually in rendered abstracts.
	Keywords []string

	// TopCategories bounds the per-text-criterion frequency tables in
	// the final statistics (default 5).
	TopCategories int

	// Input and Output default to stdin and stdout.
	Input  io.Reader
	Output io.Writer
}

// Session is one interactive screening run over a record set.
type Session struct {
	cfg    Config
	sch    schema.Schema
	styles Styles
	in     *bufio.Scanner
	out    io.Writer
	state  State
	tbl    *table.Table
}

// Result is what a finished (completed or paused) session reports.
type Result struct {
	State State
	Stats Stats
}

// New builds a session. It does not touch the progress file until Run.
func New(cfg Config) (*Session, error) {
	if cfg.ProgressPath == "" {
		return nil, fmt.Errorf("progress path is required")
	}
	if cfg.Input == nil {
		cfg.Input = os.Stdin
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.TopCategories <= 0 {
		cfg.TopCategories = 5
	}
	in := bufio.NewScanner(cfg.Input)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Session{
		cfg:    cfg,
		sch:    cfg.Schema,
		styles: DefaultStyles(),
		in:     in,
		out:    cfg.Output,
		state:  StateNotStarted,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Table returns the session's accumulated table. Valid after Run.
func (s *Session) Table() *table.Table { return s.tbl }

// Run executes the session to completion or pause. A malformed progress
// file is fatal and aborts before any prompt; a missing one starts fresh.
func (s *Session) Run() (Result, error) {
	tbl, err := table.New(s.sch, s.cfg.Records)
	if err != nil {
		return Result{}, err
	}
	s.tbl = tbl

	prior, err := table.LoadProgress(s.cfg.ProgressPath, s.sch)
	if err != nil {
		return Result{}, err
	}
	if prior != nil && len(prior.Classified()) > 0 {
		s.state = StateResuming
		if err := s.chooseResume(prior); err != nil {
			// Input ended before the choice was made: nothing new
			// to persist.
			s.state = StatePaused
			return s.finish(), nil
		}
	}

	s.state = StateActive
	return s.runActive()
}

// chooseResume asks the one-time resume/restart question. On resume the
// prior decisions are carried over and stay immutable; on restart the full
// record set is worked and the prior file is overwritten as decisions come in.
func (s *Session) chooseResume(prior *table.Table) error {
	carried := 0
	for _, r := range prior.Classified() {
		if _, ok := s.tbl.Get(r.Record.ID); ok {
			carried++
		}
	}
	fmt.Fprintf(s.out, "Found previous progress: %s\n", s.cfg.ProgressPath)
	fmt.Fprintf(s.out, "Records already classified: %d\n", carried)
	fmt.Fprintf(s.out, "Records pending: %d\n", s.tbl.Len()-carried)

	resume, err := s.promptYesNo("Continue where you left off? [y/n]: ")
	if err != nil {
		return err
	}
	if resume {
		s.tbl.CarryFrom(prior)
	}
	return nil
}

func (s *Session) runActive() (Result, error) {
	pending := s.tbl.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(s.out, "No records pending classification. Screening complete!")
		s.state = StateCompleted
		return s.finish(), nil
	}

	total := len(pending)
	for count, row := range pending {
		s.render(row, count+1, total)

		cls, quit, err := s.collect(row)
		if err != nil || quit {
			// Everything confirmed so far is already on disk, but a
			// quit before the first decision must still leave a
			// progress file behind.
			if saveErr := table.SaveProgress(s.tbl, s.cfg.ProgressPath); saveErr != nil {
				return Result{}, saveErr
			}
			s.state = StatePaused
			fmt.Fprintln(s.out, "Session paused. Progress saved.")
			return s.finish(), nil
		}

		if err := s.tbl.SetClassification(row.Record.ID, cls); err != nil {
			return Result{}, err
		}
		if err := table.SaveProgress(s.tbl, s.cfg.ProgressPath); err != nil {
			return Result{}, err
		}

		if (count+1)%progressNoticeEvery == 0 {
			fmt.Fprintln(s.out, s.styles.Notice.Render(
				fmt.Sprintf("--- Progress saved: %d records reviewed this session ---", count+1)))
		}
	}

	s.state = StateCompleted
	return s.finish(), nil
}

// collect gathers one record's full classification. quit reports an
// explicit stop; the in-flight answers are discarded, never persisted.
func (s *Session) collect(row *table.Row) (cls table.Classification, quit bool, err error) {
	cls = table.Classification{
		Bool: make(map[string]bool),
		Text: make(map[string]string),
	}

	if len(s.sch.BoolCriteria) > 0 {
		fmt.Fprintln(s.out, s.styles.Header.Render("=== INCLUSION CRITERIA ==="))
		for _, name := range s.sch.BoolCriteria {
			v, err := s.promptYesNo(fmt.Sprintf("%s [y/n]: ", name))
			if err != nil {
				return cls, false, err
			}
			cls.Bool[name] = v
		}
	}

	if len(s.sch.TextCriteria) > 0 {
		fmt.Fprintln(s.out, s.styles.Header.Render("=== DETAILED CLASSIFICATION ==="))
		fmt.Fprintln(s.out, "(leave blank if not applicable, or describe the type/category)")
		for _, tc := range s.sch.TextCriteria {
			for _, hint := range tc.Hints {
				fmt.Fprintln(s.out, s.styles.Hint.Render(hint))
			}
			v, err := s.promptLine(fmt.Sprintf("%s: ", tc.Name))
			if err != nil {
				return cls, false, err
			}
			cls.Text[tc.Name] = strings.TrimSpace(v)
		}
	}

	if len(s.sch.BoolCriteria) > 0 || len(s.sch.TextCriteria) > 0 {
		s.renderCriteriaSummary(cls)
	}

	decision, quit, err := s.promptDecision()
	if err != nil || quit {
		return cls, quit, err
	}
	cls.Decision = decision

	comment, err := s.promptComment(decision)
	if err != nil {
		return cls, false, err
	}
	cls.Comment = comment

	return cls, false, nil
}

// --- prompt primitives ---

func (s *Session) readLine() (string, error) {
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("reading operator input: %w", err)
		}
		return "", errInputClosed
	}
	return s.in.Text(), nil
}

// promptYesNo keeps asking until the operator answers y or n. Anything else
// is a validation failure and is re-prompted, never defaulted.
func (s *Session) promptYesNo(label string) (bool, error) {
	for {
		fmt.Fprint(s.out, label)
		line, err := s.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(s.out, s.styles.Error.Render("Invalid input: answer y or n."))
	}
}

func (s *Session) promptLine(label string) (string, error) {
	fmt.Fprint(s.out, label)
	return s.readLine()
}

// promptDecision collects the final decision from the closed token set:
// [i]nclude, [e]xclude, [d]oubtful, [s]top.
func (s *Session) promptDecision() (types.Decision, bool, error) {
	for {
		fmt.Fprint(s.out, "\nDECISION: [i]nclude, [e]xclude, [d]oubtful, [s]top: ")
		line, err := s.readLine()
		if err != nil {
			return types.DecisionUnset, false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "i":
			return types.DecisionInclude, false, nil
		case "e":
			return types.DecisionExclude, false, nil
		case "d":
			return types.DecisionUncertain, false, nil
		case "s":
			return types.DecisionUnset, true, nil
		}
		fmt.Fprintln(s.out, s.styles.Error.Render("Invalid input: answer i, e, d, or s."))
	}
}

// promptComment collects the free-text comment. When the schema requires a
// reason for the decision, an empty answer is re-prompted.
func (s *Session) promptComment(d types.Decision) (string, error) {
	if !s.sch.RequiresReason(d) {
		line, err := s.promptLine("\nComment (optional): ")
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	label := "\nReason: "
	switch d {
	case types.DecisionExclude:
		label = "\nExcluded because: "
	case types.DecisionUncertain:
		label = "\nUncertain because: "
	}
	for {
		line, err := s.promptLine(label)
		if err != nil {
			return "", err
		}
		if v := strings.TrimSpace(line); v != "" {
			return v, nil
		}
		fmt.Fprintln(s.out, s.styles.Error.Render("A reason is required for this decision."))
	}
}

func (s *Session) finish() Result {
	stats := Compute(s.tbl, s.cfg.TopCategories)
	stats.Print(s.out, s.sch)
	return Result{State: s.state, Stats: stats}
}
