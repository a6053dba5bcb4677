package webhook

import "context"

const HandoverReportSchemaVersion = "2026-10-01"

type HandoverReportEntry struct {
	Description string `json:"description"`
	Kind        string `json:"kind"`
	AssetRef    string `json:"asset_ref,omitempty"`
	Committed   bool   `json:"committed"`
}

type HandoverReportPayload struct {
	SchemaVersion    string                `json:"schema_version"`
	HandoverID       string                `json:"handover_id"`
	DiscordServerID  string                `json:"discord_server_id"`
	DiscordChannelID string                `json:"discord_channel_id"`
	UnitID           string                `json:"unit_id"`
	ResponsibleParty string                `json:"responsible_party"`
	StartAt          string                `json:"start_at"`
	EndAt            string                `json:"end_at"`
	Timezone         string                `json:"timezone"`
	Total            int                   `json:"total"`
	Committed        int                   `json:"committed"`
	Entries          []HandoverReportEntry `json:"entries"`
}

type Sender interface {
	SendHandoverReport(ctx context.Context, payload HandoverReportPayload) error
}
