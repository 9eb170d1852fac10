package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type listEventsInput struct {
	After uint64 `json:"after,omitempty" jsonschema:"Return events with a sequence number greater than this. Default: 0."`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of events to return. Capped by policy."`
}

type eventInfo struct {
	Seq       uint64 `json:"seq"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Data      string `json:"data"`
}

type listEventsOutput struct {
	Events []eventInfo `json:"events"`
	Next   uint64      `json:"next"`
}

func (s *VaultMCPServer) registerEventTools() {
	addTool(s, &sdkmcp.Tool{
		Name:        "vault_list_events",
		Description: "List committed vault events in sequence order. Pass the returned next value as after to page forward.",
	}, s.handleListEvents)
}

func (s *VaultMCPServer) handleListEvents(ctx context.Context, _ *sdkmcp.CallToolRequest, input listEventsInput) (*sdkmcp.CallToolResult, listEventsOutput, error) {
	evs, err := s.vault.Events(ctx, input.After, s.policy.EventLimit(input.Limit))
	if err != nil {
		return nil, listEventsOutput{}, fmt.Errorf("list events: %w", err)
	}

	out := listEventsOutput{Events: make([]eventInfo, 0, len(evs)), Next: input.After}
	for _, ev := range evs {
		out.Events = append(out.Events, eventInfo{
			Seq:       ev.Seq,
			Type:      ev.Type,
			Timestamp: ev.Timestamp.UTC().Format(time.RFC3339),
			Data:      string(ev.Data),
		})
		out.Next = ev.Seq
	}
	return nil, out, nil
}
