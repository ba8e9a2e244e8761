package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"qproof.io/qpo/audit"
	"qproof.io/qpo/model"
	"qproof.io/qpo/pipeline"
	"qproof.io/qpo/storage"
)

// Server exposes a pipeline.Orchestrator over the pipeline gRPC service.
//
// When Archive is set, every successful run is rendered as a canonical
// audit document, archived, and the resulting CID is returned to the
// caller alongside the run record.
type Server struct {
	UnimplementedPipelineServer

	Orchestrator *pipeline.Orchestrator
	// Archive stores canonical audit documents. Optional.
	Archive storage.CAS
	// Audit controls audit-document rendering (exporter ID, signer).
	Audit audit.RenderOptions
	Log   zerolog.Logger
}

func (s *Server) Run(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Orchestrator == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing orchestrator")
	}

	var req model.RunRequest
	if err := json.Unmarshal(in.GetValue(), &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed run request")
	}

	run, err := s.Orchestrator.Run(ctx, pipeline.Request{
		Input:         req.SensitiveInput,
		Scenario:      req.Scenario,
		ForceFallback: req.ForceFallback,
		ModeOverride:  req.SecurityModeOverride,
	})
	if err != nil {
		return nil, mapPipelineErr(err)
	}

	resp := model.RunResponse{Run: run}
	if s.Archive != nil {
		doc, err := audit.RenderDocument(run, s.Audit)
		if err != nil {
			return nil, status.Error(codes.Internal, "audit render failed")
		}
		id, err := s.Archive.Put(doc.Bytes)
		if err != nil {
			return nil, status.Error(codes.Internal, "audit archive failed")
		}
		resp.AuditCID = id.String()
		s.Log.Info().
			Str("runId", run.RunID).
			Str("auditCid", resp.AuditCID).
			Msg("archived audit evidence")
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, "response encoding failed")
	}
	return wrapperspb.Bytes(out), nil
}

func (s *Server) SimulateAttack(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || s.Orchestrator == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing orchestrator")
	}

	sim, err := s.Orchestrator.SimulateAttack(in.GetValue())
	if err != nil {
		return nil, mapPipelineErr(err)
	}
	out, err := json.Marshal(sim)
	if err != nil {
		return nil, status.Error(codes.Internal, "response encoding failed")
	}
	return wrapperspb.Bytes(out), nil
}

func (s *Server) Status(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_, _ = ctx, in
	if s == nil || s.Orchestrator == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing orchestrator")
	}

	out, err := json.Marshal(s.Orchestrator.Status())
	if err != nil {
		return nil, status.Error(codes.Internal, "response encoding failed")
	}
	return wrapperspb.Bytes(out), nil
}

// mapPipelineErr converts orchestrator errors to gRPC status errors.
// The transported message is the coded message, never the raw input.
func mapPipelineErr(err error) error {
	// Caller-driven cancellation is not a server fault.
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, "run canceled by caller")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, "run deadline exceeded")
	}

	coded := pipeline.Coded(err)
	switch coded.Code {
	case model.ErrInvalidInput, model.ErrUnknownAttackType:
		return status.Error(codes.InvalidArgument, coded.Message)
	case model.ErrBackendUnavailable:
		return status.Error(codes.Unavailable, coded.Message)
	case model.ErrVerificationFailed:
		return status.Error(codes.FailedPrecondition, coded.Message)
	case model.ErrNotFound:
		return status.Error(codes.NotFound, coded.Message)
	default:
		return status.Error(codes.Internal, coded.Message)
	}
}
