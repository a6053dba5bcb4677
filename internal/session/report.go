package session

import (
	"time"

	"github.com/foxseedlab/usterki/internal/webhook"
)

func buildHandoverReport(guildID, channelID string, h Handover, endedAt time.Time, timezone string, loc *time.Location, results []commitResult) webhook.HandoverReportPayload {
	entries := make([]webhook.HandoverReportEntry, 0, len(results))
	committed := 0
	for _, r := range results {
		if r.committed {
			committed++
		}
		entries = append(entries, webhook.HandoverReportEntry{
			Description: r.entry.Description,
			Kind:        string(r.entry.Kind),
			AssetRef:    r.entry.AssetRef,
			Committed:   r.committed,
		})
	}
	return webhook.HandoverReportPayload{
		SchemaVersion:    webhook.HandoverReportSchemaVersion,
		HandoverID:       h.HandoverID,
		DiscordServerID:  guildID,
		DiscordChannelID: channelID,
		UnitID:           h.UnitID,
		ResponsibleParty: h.ResponsibleParty,
		StartAt:          h.StartedAt.In(safeLocation(loc)).Format(time.RFC3339),
		EndAt:            endedAt.In(safeLocation(loc)).Format(time.RFC3339),
		Timezone:         timezone,
		Total:            len(results),
		Committed:        committed,
		Entries:          entries,
	}
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
