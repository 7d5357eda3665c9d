package plan

import (
	"sort"

	"github.com/quidome/exify/pkg/reconcile"
)

// Step is a single repair action.
type Step string

const (
	WriteExif     Step = "write_exif"
	WriteFileTime Step = "write_file_time"
)

// Operation represents the planned repair of one file.
type Operation struct {
	Path  string
	Steps []Step
}

// For returns the steps needed for an analysis result.
//
// The two checks are independent: a missing EXIF timestamp asks for an EXIF
// write, a spread above tolerance asks for a file time write. The EXIF step
// always comes first. No steps means the file is fine.
func For(result reconcile.AnalysisResult) []Step {
	var steps []Step
	if !result.HasExifTimestamp {
		steps = append(steps, WriteExif)
	}
	if !result.Consistent {
		steps = append(steps, WriteFileTime)
	}
	return steps
}

// Plan computes the operations for a list of analyzed records.
//
// Records that failed analysis or need no repair are skipped. Operations are
// ordered by path.
func Plan(records []*reconcile.FileRecord) []Operation {
	operations := make([]Operation, 0, len(records))

	for _, rec := range records {
		if !rec.State.Analyzed() {
			continue
		}
		steps := For(rec.Result)
		if len(steps) == 0 {
			continue
		}

		operations = append(operations, Operation{
			Path:  rec.Path(),
			Steps: steps,
		})
	}

	sort.Slice(operations, func(i, j int) bool {
		return operations[i].Path < operations[j].Path
	})
	return operations
}
