package helpers

import (
	"sort"
	"strings"

	"github.com/doeshing/cmdgen/internal/domain"
)

// CommandStatistic represents usage statistics for a command
type CommandStatistic struct {
	Command string
	Count   int
}

// HistoryStatistics summarises a set of interaction records.
type HistoryStatistics struct {
	Total       int
	Accepted    int
	Rejected    int
	Failed      int
	Executed    int
	ExecutedOK  int
	Rated       int
	FeedbackSum int
	FailureKind map[string]int
	TopCommands []CommandStatistic
}

// AverageFeedback returns the mean rating, or 0 without ratings.
func (s HistoryStatistics) AverageFeedback() float64 {
	if s.Rated == 0 {
		return 0
	}
	return float64(s.FeedbackSum) / float64(s.Rated)
}

// AnalyzeHistory computes statistics over records, keeping the top N commands.
func AnalyzeHistory(records []domain.InteractionRecord, top int) HistoryStatistics {
	stats := HistoryStatistics{
		Total:       len(records),
		FailureKind: make(map[string]int),
	}
	freq := make(map[string]int)

	for _, rec := range records {
		switch {
		case rec.Success:
			stats.Accepted++
			freq[rec.Command]++
		case rec.IsRejection():
			stats.Rejected++
			stats.FailureKind[rec.Error]++
		default:
			stats.Failed++
			stats.FailureKind[rec.Error]++
		}
		if rec.Executed {
			stats.Executed++
			if rec.ExitCode != nil && *rec.ExitCode == 0 {
				stats.ExecutedOK++
			}
		}
		if rec.Feedback != nil {
			stats.Rated++
			stats.FeedbackSum += *rec.Feedback
		}
	}

	stats.TopCommands = CalculateTopCommands(freq, top)
	return stats
}

// CalculateTopCommands returns the top N most frequently used commands
// If limit is 0 or negative, returns all commands
func CalculateTopCommands(commandFrequency map[string]int, limit int) []CommandStatistic {
	stats := make([]CommandStatistic, 0, len(commandFrequency))
	for cmd, count := range commandFrequency {
		stats = append(stats, CommandStatistic{Command: cmd, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Command < stats[j].Command
		}
		return stats[i].Count > stats[j].Count
	})

	if limit > 0 && len(stats) > limit {
		return stats[:limit]
	}
	return stats
}

// CalculateSuccessRate calculates the success rate as a percentage
func CalculateSuccessRate(successfulCount int, totalCount int) float64 {
	if totalCount == 0 {
		return 0.0
	}
	return float64(successfulCount) / float64(totalCount) * 100.0
}

// DeriveUndoHints suggests how to reverse executed file-changing commands.
// Returns a sorted list of unique hints
func DeriveUndoHints(records []domain.InteractionRecord) []string {
	hints := map[string]string{
		"rm ":    "Deleted files can only be restored from backups or `git checkout -- <path>` if tracked.",
		"mv ":    "Moves are undone by moving the target back to its original name.",
		"cp ":    "Copies can be removed once you confirm the source is intact.",
		"mkdir ": "Empty directories created by mistake can be removed with `rmdir`.",
	}

	found := make(map[string]struct{})
	for _, rec := range records {
		if !rec.Executed {
			continue
		}
		command := strings.ToLower(strings.TrimPrefix(rec.Command, "sudo "))
		for prefix, hint := range hints {
			if strings.HasPrefix(command, prefix) {
				found[hint] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(found))
	for hint := range found {
		out = append(out, hint)
	}
	sort.Strings(out)
	return out
}
