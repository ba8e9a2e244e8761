package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"qproof.io/qpo/audit"
	"qproof.io/qpo/compute"
	"qproof.io/qpo/compute/plain"
	computeregistry "qproof.io/qpo/compute/registry"
	"qproof.io/qpo/config"
	"qproof.io/qpo/keys"
	"qproof.io/qpo/logger"
	"qproof.io/qpo/model"
	"qproof.io/qpo/pipeline"
	"qproof.io/qpo/proof"
	"qproof.io/qpo/proof/commitment"
	"qproof.io/qpo/proof/groth16"
	"qproof.io/qpo/securitymode"
	"qproof.io/qpo/service"
	"qproof.io/qpo/storage"
	"qproof.io/qpo/storage/casregistry"

	_ "qproof.io/qpo/compute/ckks"
	_ "qproof.io/qpo/storage/grpccas"
	_ "qproof.io/qpo/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "run":
		return cmdRun(args[1:], out, errOut)
	case "attack":
		return cmdAttack(args[1:], out, errOut)
	case "status":
		return cmdStatus(args[1:], out, errOut)
	case "export":
		return cmdExport(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "audit-cid":
		return cmdAuditCID(args[1:], out, errOut)
	case "archive":
		return cmdArchive(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "qpo: verifiable-compute pipeline CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  qpo run (--input <text> | --input-file <path>) [--scenario <name>] [--force-fallback] [--security-mode <mode>] [--config <yaml>] [--format json|markdown|audit] [--sign-seed-hex <64hex> | --signer <name> [--signer-role <role>]] [--target <host:port>]")
	fmt.Fprintln(w, "  qpo attack <GROVER|SHOR> [<GROVER|SHOR> ...] [--target <host:port>]")
	fmt.Fprintln(w, "  qpo status [--config <yaml>] [--target <host:port>]")
	fmt.Fprintln(w, "  qpo export --run <run.json> [--format json|markdown|audit]")
	fmt.Fprintln(w, "  qpo verify <audit-file>")
	fmt.Fprintln(w, "  qpo audit-cid <audit-file>")
	fmt.Fprintln(w, "  qpo archive put [--backend localfs|grpc ...] <file>")
	fmt.Fprintln(w, "  qpo archive get [--backend localfs|grpc ...] --cid <cid> [--out <file>]")
	fmt.Fprintln(w, "  qpo key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  qpo key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  qpo key list")
	fmt.Fprintln(w, "  qpo key export --name <name> [--role <role>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - run executes locally unless --target points at a qpod daemon")
	fmt.Fprintln(w, "  - format audit prints the canonical signed audit document")
	fmt.Fprintln(w, "  - signed documents need a signer: --sign-seed-hex or a stored key")
	fmt.Fprintln(w, "  - keys live under ~/.qpo/keys/<name> (0600 private key files)")
	fmt.Fprintln(w, "  - archive grpc backend talks to a qpod archive endpoint")
}

// newOrchestrator assembles a local pipeline from configuration.
func newOrchestrator(cfg config.Config, log string) (*pipeline.Orchestrator, error) {
	transform := compute.Transform{Offset: cfg.Compute.RiskOffset, Ratio: cfg.Compute.RiskRatio}
	primary, err := computeregistry.Open(cfg.Compute.Backend, computeregistry.UsageCLI, computeregistry.Config{
		LogN:            cfg.Compute.LogN,
		LogDefaultScale: cfg.Compute.LogDefaultScale,
		Transform:       transform,
	})
	if err != nil {
		return nil, err
	}

	engine, err := proofEngine(cfg.Proof.System)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Config{
		Primary:  primary,
		Fallback: plain.New(transform),
		Engine:   engine,
		Modes:    securitymode.New(),
		Thresholds: compute.Thresholds{
			ApproveBelow:    cfg.Decision.ApproveBelow,
			RejectAtOrAbove: cfg.Decision.RejectAtOrAbove,
		},
		Policy:         pipeline.Permissive,
		CircuitVersion: circuitVersionFor(cfg.Proof.System),
		Logger:         logger.New("qpo", log, true),
	})
}

func proofEngine(system string) (proof.Engine, error) {
	switch system {
	case "", "hash-commitment":
		return commitment.New(), nil
	case "groth16":
		return groth16.New(), nil
	default:
		return nil, fmt.Errorf("unknown proof system %q", system)
	}
}

func circuitVersionFor(system string) string {
	if system == "groth16" {
		return groth16.CircuitVersion
	}
	return commitment.CircuitVersion
}

func loadConfig(path string, errOut io.Writer) (config.Config, bool) {
	if path == "" {
		return config.Default(), true
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return cfg, false
	}
	return cfg, true
}

// loadSigner resolves an audit signer from CLI flags. Returns nil when no
// signer flags are set.
func loadSigner(seedHex, signerName, signerRole string, errOut io.Writer) (*audit.Signer, bool) {
	if seedHex == "" && signerName == "" {
		return nil, true
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return nil, false
	}
	seed, err := ks.LoadSeed(seedHex, signerName, signerRole, "")
	if err != nil {
		fmt.Fprintf(errOut, "invalid signer: %v\n", err)
		return nil, false
	}
	signer, err := audit.NewSignerFromSeed(seed)
	if err != nil {
		fmt.Fprintf(errOut, "signer: %v\n", err)
		return nil, false
	}
	return signer, true
}

func cmdRun(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var input string
	var inputFile string
	var scenario string
	var forceFallback bool
	var configPath string
	var format string
	var seedHex string
	var signerName string
	var signerRole string
	var target string
	var attacks multiString
	var securityMode string
	var logLevel string

	fs.StringVar(&input, "input", "", "Sensitive input text")
	fs.StringVar(&inputFile, "input-file", "", "Read sensitive input from a file")
	fs.StringVar(&scenario, "scenario", "private-loan-preapproval", "Scenario label for the run record")
	fs.BoolVar(&forceFallback, "force-fallback", false, "Run on the plaintext fallback backend")
	fs.StringVar(&configPath, "config", "", "YAML config file (optional)")
	fs.StringVar(&format, "format", "json", "Output format: json|markdown|audit")
	fs.StringVar(&seedHex, "sign-seed-hex", "", "ed25519 seed as 64 hex chars for audit signing")
	fs.StringVar(&signerName, "signer", "", "Use a stored key by name (from 'qpo key init')")
	fs.StringVar(&signerRole, "signer-role", "", "When using --signer, optionally use a derived role key")
	fs.StringVar(&target, "target", "", "qpod address; runs remotely when set")
	fs.Var(&attacks, "attack", "Inject a simulated attack before the run (repeatable; GROVER|SHOR)")
	fs.StringVar(&securityMode, "security-mode", "", "Pin the run to a mode at or above the current posture (NORMAL|HYBRID|POST_QUANTUM)")
	fs.StringVar(&logLevel, "log-level", "warn", "Log level: debug|info|warn|error")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if input == "" && inputFile == "" {
		fmt.Fprintln(errOut, "missing input: use --input or --input-file")
		return 2
	}
	if input != "" && inputFile != "" {
		fmt.Fprintln(errOut, "conflicting input flags: --input cannot be combined with --input-file")
		return 2
	}

	payload := []byte(input)
	if inputFile != "" {
		b, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(inputFile), err)
			return 1
		}
		payload = b
	}

	if target != "" {
		return runRemote(target, payload, scenario, forceFallback, securityMode, attacks, format, out, errOut)
	}

	cfg, ok := loadConfig(configPath, errOut)
	if !ok {
		return 1
	}
	signer, ok := loadSigner(seedHex, signerName, signerRole, errOut)
	if !ok {
		return 2
	}

	orch, err := newOrchestrator(cfg, logLevel)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	for _, a := range attacks {
		if _, err := orch.SimulateAttack(a); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	}

	runRec, err := orch.Run(context.Background(), pipeline.Request{
		Input:         payload,
		Scenario:      scenario,
		ForceFallback: forceFallback,
		ModeOverride:  securityMode,
	})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	if cfg.Archive.Enabled {
		cas, closeFn, err := openArchive(cfg.Archive)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if closeFn != nil {
			defer closeFn()
		}
		doc, err := audit.RenderDocument(runRec, audit.RenderOptions{Signer: signer})
		if err != nil {
			fmt.Fprintf(errOut, "audit render: %v\n", err)
			return 1
		}
		id, err := cas.Put(doc.Bytes)
		if err != nil {
			fmt.Fprintf(errOut, "archive: %v\n", err)
			return 1
		}
		fmt.Fprintf(errOut, "Audit-CID: %s\n", id)
	}

	return printRun(runRec, format, signer, out, errOut)
}

func runRemote(target string, payload []byte, scenario string, forceFallback bool, securityMode string, attacks []string, format string, out io.Writer, errOut io.Writer) int {
	client, err := service.Dial(target, service.DialOptions{Timeout: 5 * time.Second})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer client.Close()
	client.Timeout = 60 * time.Second

	for _, a := range attacks {
		if _, err := client.SimulateAttack(a); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	}

	resp, err := client.Run(model.RunRequest{
		SensitiveInput:       payload,
		Scenario:             scenario,
		ForceFallback:        forceFallback,
		SecurityModeOverride: securityMode,
	})
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if resp.AuditCID != "" {
		fmt.Fprintf(errOut, "Audit-CID: %s\n", resp.AuditCID)
	}
	// The daemon holds the signer; audit format needs a local signer.
	return printRun(resp.Run, format, nil, out, errOut)
}

func printRun(runRec model.Run, format string, signer *audit.Signer, out io.Writer, errOut io.Writer) int {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		s, err := audit.ExportJSON(runRec)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		_, _ = io.WriteString(out, s)
	case "markdown":
		_, _ = io.WriteString(out, audit.ExportMarkdown(runRec))
	case "audit":
		doc, err := audit.RenderDocument(runRec, audit.RenderOptions{Signer: signer})
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		_, _ = out.Write(doc.Bytes)
		fmt.Fprintf(errOut, "Audit-CID: %s\n", doc.CID)
	default:
		fmt.Fprintf(errOut, "invalid --format %q (want json, markdown or audit)\n", format)
		return 2
	}
	return 0
}

func openArchive(cfg config.ArchiveConfig) (storage.CAS, func() error, error) {
	primary, closeFn, err := openArchiveRoot(cfg.Root)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Replica == "" {
		return primary, closeFn, nil
	}
	replica, replicaClose, err := openArchiveRoot(cfg.Replica)
	if err != nil {
		if closeFn != nil {
			_ = closeFn()
		}
		return nil, nil, err
	}
	closeAll := func() error {
		var firstErr error
		for _, f := range []func() error{replicaClose, closeFn} {
			if f == nil {
				continue
			}
			if err := f(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
	return storage.ReplicatingCAS{Backends: []storage.NamedCAS{
		{Name: "root", CAS: primary},
		{Name: "replica", CAS: replica},
	}}, closeAll, nil
}

func openArchiveRoot(root string) (storage.CAS, func() error, error) {
	if root == "" {
		return nil, nil, fmt.Errorf("archive root is required")
	}
	return casregistry.OpenWithConfig("localfs", casregistry.UsageCLI, map[string]string{"localfs-dir": root})
}

func cmdAttack(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("attack", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var target string
	fs.StringVar(&target, "target", "", "qpod address; mutates daemon state when set")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "usage: qpo attack <GROVER|SHOR> [<GROVER|SHOR> ...] [--target <host:port>]")
		return 2
	}

	var simulate func(attack string) (model.AttackSimulation, error)
	if target != "" {
		client, err := service.Dial(target, service.DialOptions{Timeout: 5 * time.Second})
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		defer client.Close()
		client.Timeout = 10 * time.Second
		simulate = client.SimulateAttack
	} else {
		// Local mode demonstrates the escalation ladder in-process.
		controller := securitymode.New()
		simulate = func(attack string) (model.AttackSimulation, error) {
			tr, err := controller.Simulate(securitymode.AttackType(attack))
			if err != nil {
				return model.AttackSimulation{}, err
			}
			return model.AttackSimulation{
				AttackType:       string(tr.AttackType),
				PreviousMode:     model.SecurityMode(tr.Previous),
				NewMode:          model.SecurityMode(tr.New),
				DetectorSummary:  tr.DetectorSummary,
				AutoResponse:     tr.AutoResponse,
				PostQuantumStack: tr.PostQuantumStack,
			}, nil
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for _, attack := range fs.Args() {
		sim, err := simulate(attack)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
		if err := enc.Encode(sim); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}
	return 0
}

func cmdStatus(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var configPath string
	var target string
	fs.StringVar(&configPath, "config", "", "YAML config file (optional)")
	fs.StringVar(&target, "target", "", "qpod address; queries the daemon when set")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	var st model.BackendStatus
	if target != "" {
		client, err := service.Dial(target, service.DialOptions{Timeout: 5 * time.Second})
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		defer client.Close()
		client.Timeout = 10 * time.Second
		st, err = client.Status()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	} else {
		cfg, ok := loadConfig(configPath, errOut)
		if !ok {
			return 1
		}
		orch, err := newOrchestrator(cfg, "error")
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		st = orch.Status()
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func cmdExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var runPath string
	var format string
	var seedHex string
	var signerName string
	var signerRole string
	fs.StringVar(&runPath, "run", "", "Run record JSON file (from 'qpo run --format json')")
	fs.StringVar(&format, "format", "markdown", "Output format: json|markdown|audit")
	fs.StringVar(&seedHex, "sign-seed-hex", "", "ed25519 seed as 64 hex chars for audit signing")
	fs.StringVar(&signerName, "signer", "", "Use a stored key by name")
	fs.StringVar(&signerRole, "signer-role", "", "Optionally use a derived role key")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if runPath == "" {
		fmt.Fprintln(errOut, "missing --run")
		return 2
	}

	b, err := os.ReadFile(runPath)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(runPath), err)
		return 1
	}
	var runRec model.Run
	if err := json.Unmarshal(b, &runRec); err != nil {
		fmt.Fprintf(errOut, "invalid run record: %v\n", err)
		return 1
	}

	signer, ok := loadSigner(seedHex, signerName, signerRole, errOut)
	if !ok {
		return 2
	}
	return printRun(runRec, format, signer, out, errOut)
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: qpo verify <audit-file>")
		return 2
	}

	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}

	id, err := audit.CID(b)
	if err != nil {
		fmt.Fprintf(errOut, "invalid audit document: %v\n", err)
		return 1
	}

	signed, err := audit.VerifySignatures(b)
	if err != nil {
		fmt.Fprintf(errOut, "signature verification failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "Audit-CID: %s\n", id)
	if signed {
		fmt.Fprintln(out, "Signatures: OK")
	} else {
		fmt.Fprintln(out, "Signatures: none")
	}
	return 0
}

func cmdAuditCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("audit-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: qpo audit-cid <audit-file>")
		return 2
	}

	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(fs.Arg(0)), err)
		return 1
	}
	id, err := audit.CID(b)
	if err != nil {
		fmt.Fprintf(errOut, "invalid audit document: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id)
	return 0
}

func cmdArchive(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: qpo archive <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: put, get, has")
		return 2
	}
	switch args[0] {
	case "put":
		return cmdArchivePut(args[1:], out, errOut)
	case "get":
		return cmdArchiveGet(args[1:], out, errOut)
	case "has":
		return cmdArchiveHas(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown archive subcommand: %s\n", args[0])
		return 2
	}
}

type archiveFlags struct {
	backend      string
	listBackends bool
}

func (c *archiveFlags) add(fs *flag.FlagSet) {
	fs.StringVar(&c.backend, "backend", "localfs", "Archive backend name")
	fs.BoolVar(&c.listBackends, "list-backends", false, "List supported backends and exit")
	casregistry.RegisterFlags(fs, casregistry.UsageCLI)
}

func (c *archiveFlags) open() (storage.CAS, func() error, error) {
	return casregistry.Open(c.backend, casregistry.UsageCLI)
}

func printBackends(w io.Writer) {
	for _, b := range casregistry.List(casregistry.UsageCLI) {
		if b.Description == "" {
			_, _ = fmt.Fprintf(w, "%s\n", b.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Description)
	}
}

func cmdArchivePut(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive put", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common archiveFlags
	common.add(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: qpo archive put [common flags] <file>")
		return 2
	}

	cas, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	p := fs.Arg(0)
	b, err := os.ReadFile(p)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", filepath.Base(p), err)
		return 1
	}
	id, err := cas.Put(b)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	_, _ = fmt.Fprintln(out, id.String())
	return 0
}

func cmdArchiveGet(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive get", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common archiveFlags
	common.add(fs)

	var cidStr string
	var outPath string
	fs.StringVar(&cidStr, "cid", "", "CID to fetch")
	fs.StringVar(&outPath, "out", "", "Output file (optional; default stdout)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}

	cas, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, storage.ErrInvalidCID)
		return 1
	}
	b, err := cas.Get(id)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if outPath == "" {
		_, _ = out.Write(b)
		return 0
	}
	if err := os.WriteFile(outPath, b, 0o600); err != nil {
		fmt.Fprintf(errOut, "write %s: %v\n", outPath, err)
		return 1
	}
	return 0
}

func cmdArchiveHas(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("archive has", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var common archiveFlags
	common.add(fs)

	var cidStr string
	fs.StringVar(&cidStr, "cid", "", "CID to check")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if common.listBackends {
		printBackends(out)
		return 0
	}
	if cidStr == "" {
		fmt.Fprintln(errOut, "missing --cid")
		return 2
	}

	cas, closeFn, err := common.open()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := cid.Decode(cidStr)
	if err != nil {
		fmt.Fprintln(errOut, storage.ErrInvalidCID)
		return 1
	}
	if cas.Has(id) {
		_, _ = fmt.Fprintln(out, "present")
		return 0
	}
	_, _ = fmt.Fprintln(out, "absent")
	return 1
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "export":
		return cmdKeyExport(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "qpo key: minimal local key management")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  qpo key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  qpo key derive --from <name> --role <role> [--force]")
	fmt.Fprintln(w, "  qpo key list")
	fmt.Fprintln(w, "  qpo key export --name <name> [--role <role>]")
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name (directory under ~/.qpo/keys)")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckKeyName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}

	var seed []byte
	if seedHex != "" {
		var derr error
		seed, derr = keys.ParseSeedHex(seedHex)
		if derr != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", derr)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	signerKey, rootPath, err := ks.InitializeRootKey(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created root key: %s\n", signerKey)
	fmt.Fprintf(out, "Stored at: %s\n", rootPath)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var role string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&role, "role", "", "Role identifier (e.g. exporter, auditor)")
	fs.BoolVar(&force, "force", false, "Overwrite existing key files")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" {
		fmt.Fprintln(errOut, "missing --from")
		return 2
	}
	if role == "" {
		fmt.Fprintln(errOut, "missing --role")
		return 2
	}
	if err := keys.CheckKeyName(from); err != nil {
		fmt.Fprintf(errOut, "invalid --from: %v\n", err)
		return 2
	}
	if err := keys.CheckRole(role); err != nil {
		fmt.Fprintf(errOut, "invalid --role: %v\n", err)
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	signerKey, rolePath, err := ks.DeriveKeyFromRole(from, role, force)
	if err != nil {
		fmt.Fprintf(errOut, "derive role key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created role key: %s\n", signerKey)
	fmt.Fprintf(out, "Stored at: %s\n", rolePath)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	entries, err := ks.ListKeys()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintln(out, e.Identifier)
		for _, role := range e.Permissions {
			fmt.Fprintf(out, "  %s/%s\n", e.Identifier, role)
		}
	}
	return 0
}

func cmdKeyExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key export", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var role string
	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&role, "role", "", "Optional role")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	signerKey, err := ks.ExportKey(name, role)
	if err != nil {
		fmt.Fprintf(errOut, "export key: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, signerKey)
	return 0
}

type multiString []string

func (m *multiString) String() string { return strings.Join(*m, ",") }

func (m *multiString) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("empty value")
	}
	*m = append(*m, v)
	return nil
}
