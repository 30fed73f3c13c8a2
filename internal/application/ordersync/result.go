package ordersync

import (
	"github.com/erp/omnisync/internal/domain/channel"
	"github.com/google/uuid"
)

// Result tallies one payload sequence
type Result struct {
	Inserted     int `json:"inserted"`
	Duplicates   int `json:"duplicates"`
	Malformed    int `json:"malformed"`
	Failed       int `json:"failed"`
	SkippedLines int `json:"skipped_lines"`
}

// Processed returns how many payloads were seen
func (r *Result) Processed() int {
	return r.Inserted + r.Duplicates + r.Malformed + r.Failed
}

// ChannelReport is the outcome of syncing one user's channel
type ChannelReport struct {
	UserID  uuid.UUID       `json:"user_id"`
	Channel channel.Channel `json:"channel"`
	Result  Result          `json:"result"`
	Err     error           `json:"-"`
}

// PassReport summarises SyncAllUsers
type PassReport struct {
	Users          int             `json:"users"`
	Channels       []ChannelReport `json:"channels"`
	Inserted       int             `json:"inserted"`
	FailedChannels int             `json:"failed_channels"`
}

func (p *PassReport) add(cr ChannelReport) {
	p.Channels = append(p.Channels, cr)
	p.Inserted += cr.Result.Inserted
	if cr.Err != nil {
		p.FailedChannels++
	}
}
