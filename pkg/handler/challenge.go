// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/AccelByte/extend-reading-challenge/pkg/challenge"
	"github.com/AccelByte/extend-reading-challenge/pkg/command"
	"github.com/AccelByte/extend-reading-challenge/pkg/common"
	"github.com/AccelByte/extend-reading-challenge/pkg/event"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// SessionReader exposes the read side of the session.
type SessionReader interface {
	Snapshot() challenge.Snapshot
}

// Challenge serves ChallengeService for chat adapters.
type Challenge struct {
	facade      *command.Facade
	session     SessionReader
	broadcaster *event.Broadcaster
	subscribers atomic.Uint64
}

var _ ChallengeServiceServer = (*Challenge)(nil)

// NewChallenge creates the gRPC handler.
func NewChallenge(facade *command.Facade, session SessionReader, broadcaster *event.Broadcaster) *Challenge {
	return &Challenge{
		facade:      facade,
		session:     session,
		broadcaster: broadcaster,
	}
}

// Execute dispatches {verb, caller, args | text} and returns {"events": [...]}.
// Domain refusals come back as command.rejected events, not gRPC errors.
func (h *Challenge) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Challenge.Execute")
	defer scope.Finish()

	cmd, err := CommandFromStruct(req)
	if err != nil {
		scope.Log.Warnf("malformed command request: %v", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	events := h.facade.Dispatch(scope.Ctx, cmd)

	out, err := EventsToStruct(events)
	if err != nil {
		scope.TraceError(err)
		return nil, status.Errorf(codes.Internal, "failed to encode events: %v", err)
	}
	return out, nil
}

// Status returns the session snapshot.
func (h *Challenge) Status(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Challenge.Status")
	defer scope.Finish()

	out, err := toStruct(h.session.Snapshot())
	if err != nil {
		scope.TraceError(err)
		return nil, status.Errorf(codes.Internal, "failed to encode snapshot: %v", err)
	}
	return out, nil
}

// Subscribe streams lifecycle events, plus command events when the request
// sets includeCommandEvents. A slow client loses events rather than blocking
// the session.
func (h *Challenge) Subscribe(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	filter := event.LifecycleOnly
	if req.GetFields()["includeCommandEvents"].GetBoolValue() {
		filter = event.All
	}

	name := fmt.Sprintf("grpc-subscriber-%d", h.subscribers.Add(1))
	sub := h.broadcaster.Subscribe(name, filter)
	defer sub.Close()

	logrus.Infof("event subscriber %s connected", name)
	defer logrus.Infof("event subscriber %s disconnected", name)

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.Events():
			if !ok {
				return status.Error(codes.Unavailable, "event stream closed")
			}
			msg, err := EventToStruct(e)
			if err != nil {
				logrus.Errorf("failed to encode event %s for %s: %v", e.Type, name, err)
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

// CommandFromStruct reads a command request. Arguments come from "args"
// (a list) or, failing that, from "text" split on whitespace.
func CommandFromStruct(req *structpb.Struct) (command.Command, error) {
	fields := req.GetFields()
	cmd := command.Command{
		Verb:   strings.TrimSpace(fields["verb"].GetStringValue()),
		Caller: strings.TrimSpace(fields["caller"].GetStringValue()),
	}
	if cmd.Verb == "" || cmd.Caller == "" {
		return command.Command{}, fmt.Errorf("verb and caller are required")
	}

	if list := fields["args"].GetListValue(); list != nil {
		for _, v := range list.GetValues() {
			cmd.Args = append(cmd.Args, valueString(v))
		}
	} else if text := fields["text"].GetStringValue(); text != "" {
		cmd.Args = strings.Fields(text)
	}

	return cmd, nil
}

func valueString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	default:
		return ""
	}
}

// EventToStruct encodes e with its JSON field names.
func EventToStruct(e challenge.Event) (*structpb.Struct, error) {
	return toStruct(e)
}

// EventsToStruct wraps events as {"events": [...]}.
func EventsToStruct(events []challenge.Event) (*structpb.Struct, error) {
	list := make([]any, 0, len(events))
	for _, e := range events {
		m, err := toMap(e)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return structpb.NewStruct(map[string]any{"events": list})
}

func toStruct(v any) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return m, nil
}
