package batch

import (
	"fmt"
	"time"
)

// Mode selects how much of each file a Job reads.
type Mode int

const (
	// ModeSubgrid reads the headers and one subgrid.
	ModeSubgrid Mode = iota
	// ModeFull reads every subgrid sequentially.
	ModeFull
	// ModeHeader reads the file header and first subgrid header only.
	ModeHeader
)

func (m Mode) String() string {
	switch m {
	case ModeSubgrid:
		return "subgrid"
	case ModeFull:
		return "full"
	case ModeHeader:
		return "header"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "subgrid":
		return ModeSubgrid, nil
	case "full":
		return ModeFull, nil
	case "header":
		return ModeHeader, nil
	default:
		return 0, fmt.Errorf("batch: unknown mode %q (want subgrid, full or header)", s)
	}
}

// Job is one file to read. X, Y, Z address a subgrid in ModeSubgrid.
type Job struct {
	Name    string
	X, Y, Z int
	Mode    Mode
}

// Jobs builds one job per name, all reading the same subgrid.
func Jobs(names []string, x, y, z int, mode Mode) []Job {
	jobs := make([]Job, len(names))
	for i, name := range names {
		jobs[i] = Job{Name: name, X: x, Y: y, Z: z, Mode: mode}
	}
	return jobs
}

// Status is the outcome of one job.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusMissing Status = "missing"
	StatusFailed  Status = "failed"
)

// Result reports one job. Bytes counts the bytes decoded from the file.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration_ns"`
}

// Summary aggregates results. Elapsed is the wall time of the run that
// produced them, zero when built by CollectStatus alone.
type Summary struct {
	Files   int           `json:"files"`
	OK      int           `json:"ok"`
	Skipped int           `json:"skipped"`
	Missing int           `json:"missing"`
	Failed  int           `json:"failed"`
	Bytes   int64         `json:"bytes"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// CollectStatus counts results by status. Skipped files are not counted in
// Files.
func CollectStatus(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			s.OK++
		case StatusSkipped:
			s.Skipped++
			continue
		case StatusMissing:
			s.Missing++
		case StatusFailed:
			s.Failed++
		}
		s.Files++
		s.Bytes += r.Bytes
	}
	return s
}

// Err reports whether any file failed or was missing.
func (s Summary) Err() error {
	if s.Failed == 0 && s.Missing == 0 {
		return nil
	}
	return fmt.Errorf("batch: %d of %d files failed, %d missing", s.Failed, s.Files, s.Missing)
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files in %.2f seconds.", s.Files, s.Elapsed.Seconds())
}
