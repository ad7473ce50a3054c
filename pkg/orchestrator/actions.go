package orchestrator

import (
	"context"
	"fmt"

	"github.com/entrhq/aread/pkg/request"
)

// Action is one thing a surface can ask for.
type Action string

const (
	ActionSavePage     Action = "save-page"
	ActionReadLater    Action = "read-later"
	ActionSendToKindle Action = "send-to-kindle"
	ActionReadingList  Action = "reading-list"
)

// Options returns the request flags for an add action.
func (a Action) Options() request.Options {
	switch a {
	case ActionSavePage:
		return request.Options{Archive: true}
	case ActionSendToKindle:
		return request.Options{Kindle: true}
	}
	return request.Options{}
}

// ParseAction maps a command name to an Action.
func ParseAction(name string) (Action, error) {
	switch a := Action(name); a {
	case ActionSavePage, ActionReadLater, ActionSendToKindle, ActionReadingList:
		return a, nil
	}
	return "", fmt.Errorf("unknown command %q", name)
}

// Run performs a.
func (o *Orchestrator) Run(ctx context.Context, a Action) error {
	if a == ActionReadingList {
		return o.GoToReadingList(ctx)
	}
	return o.AddPage(ctx, a.Options())
}

// SendLink submits link instead of the focused page, routed to Kindle.
func (o *Orchestrator) SendLink(ctx context.Context, link string) error {
	return o.AddPage(ctx, request.Options{Kindle: true, OverrideURL: link})
}
