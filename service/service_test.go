package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"qproof.io/qpo/audit"
	"qproof.io/qpo/compute"
	"qproof.io/qpo/compute/plain"
	"qproof.io/qpo/logger"
	"qproof.io/qpo/model"
	"qproof.io/qpo/pipeline"
	"qproof.io/qpo/proof/commitment"
	"qproof.io/qpo/securitymode"
	"qproof.io/qpo/storage/localfs"
)

func testClient(t *testing.T, srv *Server) *Client {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	gs := grpc.NewServer()
	RegisterPipelineServer(gs, srv)

	go func() {
		_ = gs.Serve(lis)
	}()
	t.Cleanup(gs.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })

	return &Client{cc: cc, client: NewPipelineClient(cc), Timeout: 5 * time.Second}
}

func testServer(t *testing.T, archived bool) *Server {
	t.Helper()

	orch, err := pipeline.New(pipeline.Config{
		Primary:        plain.New(compute.Transform{Offset: 300, Ratio: 0.18181818}),
		Engine:         commitment.New(),
		Modes:          securitymode.New(),
		Thresholds:     compute.Thresholds{ApproveBelow: 40, RejectAtOrAbove: 75},
		CircuitVersion: commitment.CircuitVersion,
		Logger:         logger.Nop(),
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	srv := &Server{Orchestrator: orch, Log: logger.Nop()}
	if archived {
		cas, err := localfs.New(t.TempDir())
		if err != nil {
			t.Fatalf("localfs.New: %v", err)
		}
		signer, err := audit.NewSignerFromSeed(bytes.Repeat([]byte{0x24}, 32))
		if err != nil {
			t.Fatalf("NewSignerFromSeed: %v", err)
		}
		srv.Archive = cas
		srv.Audit = audit.RenderOptions{Signer: signer}
	}
	return srv
}

func TestService_RunArchivesEvidence(t *testing.T) {
	srv := testServer(t, true)
	client := testClient(t, srv)

	resp, err := client.Run(model.RunRequest{
		SensitiveInput: []byte("loan::750::32::95000::home-loan"),
		Scenario:       "private-loan-preapproval",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !resp.Run.Proof.Verified {
		t.Fatalf("expected verified run")
	}
	if resp.AuditCID == "" {
		t.Fatalf("expected audit CID")
	}

	id, err := cid.Decode(resp.AuditCID)
	if err != nil {
		t.Fatalf("decode audit CID: %v", err)
	}
	doc, err := srv.Archive.Get(id)
	if err != nil {
		t.Fatalf("archive Get: %v", err)
	}
	ok, err := audit.VerifySignatures(doc)
	if err != nil {
		t.Fatalf("VerifySignatures: %v", err)
	}
	if !ok {
		t.Fatalf("expected signed archived evidence")
	}
}

func TestService_RunWithoutArchive(t *testing.T) {
	client := testClient(t, testServer(t, false))

	resp, err := client.Run(model.RunRequest{
		SensitiveInput: []byte("payload"),
		Scenario:       "demo",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.AuditCID != "" {
		t.Fatalf("expected no audit CID, got %q", resp.AuditCID)
	}
	if resp.Run.Fingerprint == "" {
		t.Fatalf("expected fingerprint")
	}
}

func TestService_RunRejectsEmptyInput(t *testing.T) {
	client := testClient(t, testServer(t, false))

	_, err := client.Run(model.RunRequest{Scenario: "demo"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestService_RunCanceledByCaller(t *testing.T) {
	srv := testServer(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body, err := json.Marshal(model.RunRequest{
		SensitiveInput: []byte("payload"),
		Scenario:       "demo",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	_, err = srv.Run(ctx, wrapperspb.Bytes(body))
	if status.Code(err) != codes.Canceled {
		t.Fatalf("caller cancellation must map to Canceled, got %v", err)
	}
}

func TestService_RunModeOverride(t *testing.T) {
	client := testClient(t, testServer(t, false))

	resp, err := client.Run(model.RunRequest{
		SensitiveInput:       []byte("payload"),
		Scenario:             "demo",
		SecurityModeOverride: string(model.ModeHybrid),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Run.SecurityMode != model.ModeHybrid {
		t.Fatalf("mode override not applied, got %s", resp.Run.SecurityMode)
	}

	_, err = client.Run(model.RunRequest{
		SensitiveInput:       []byte("payload"),
		Scenario:             "demo",
		SecurityModeOverride: "QUANTUM_SAFE",
	})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for unknown override, got %v", err)
	}
}

func TestService_SimulateAttack(t *testing.T) {
	client := testClient(t, testServer(t, false))

	sim, err := client.SimulateAttack("GROVER")
	if err != nil {
		t.Fatalf("SimulateAttack: %v", err)
	}
	if sim.NewMode != model.ModeHybrid {
		t.Fatalf("mode after GROVER: got %s want %s", sim.NewMode, model.ModeHybrid)
	}

	if _, err := client.SimulateAttack("ROWHAMMER"); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for unknown attack, got %v", err)
	}
}

func TestService_Status(t *testing.T) {
	client := testClient(t, testServer(t, false))

	st, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.Available {
		t.Fatalf("expected available backend")
	}
	if st.SecurityMode != model.ModeNormal {
		t.Fatalf("security mode: got %s want %s", st.SecurityMode, model.ModeNormal)
	}
}
