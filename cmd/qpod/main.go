package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"qproof.io/qpo/audit"
	"qproof.io/qpo/compute"
	"qproof.io/qpo/compute/plain"
	computeregistry "qproof.io/qpo/compute/registry"
	"qproof.io/qpo/config"
	"qproof.io/qpo/keys"
	"qproof.io/qpo/logger"
	"qproof.io/qpo/pipeline"
	"qproof.io/qpo/proof"
	"qproof.io/qpo/proof/commitment"
	"qproof.io/qpo/proof/groth16"
	"qproof.io/qpo/securitymode"
	"qproof.io/qpo/service"
	"qproof.io/qpo/storage"
	"qproof.io/qpo/storage/casconfig"
	"qproof.io/qpo/storage/casregistry"
	"qproof.io/qpo/storage/grpccas"

	_ "qproof.io/qpo/compute/ckks"
	_ "qproof.io/qpo/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("qpod", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file (optional)")
	listen := fs.String("listen", "", "listen address (overrides config)")
	archiveConfig := fs.String("archive-config", "", "JSON archive config file (overrides the YAML archive section)")
	exporterID := fs.String("exporter-id", "", "Exporter-ID stamped into audit documents")
	seedHex := fs.String("sign-seed-hex", "", "ed25519 seed as 64 hex chars for audit signing")
	signerName := fs.String("signer", "", "Use a stored key by name (from 'qpo key init')")
	signerRole := fs.String("signer-role", "", "When using --signer, optionally use a derived role key")
	logLevel := fs.String("log-level", "info", "Log level: debug|info|warn|error")

	_ = fs.Parse(os.Args[1:])

	log := logger.New("qpod", *logLevel, false)

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	transform := compute.Transform{Offset: cfg.Compute.RiskOffset, Ratio: cfg.Compute.RiskRatio}
	primary, err := computeregistry.Open(cfg.Compute.Backend, computeregistry.UsageDaemon, computeregistry.Config{
		LogN:            cfg.Compute.LogN,
		LogDefaultScale: cfg.Compute.LogDefaultScale,
		Transform:       transform,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	engine, err := proofEngine(cfg.Proof.System)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	orch, err := pipeline.New(pipeline.Config{
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
		Logger:         log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	archive, closeFn, err := openArchive(cfg.Archive, *archiveConfig)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	signer, err := loadSigner(*seedHex, *signerName, *signerRole)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	service.RegisterPipelineServer(s, &service.Server{
		Orchestrator: orch,
		Archive:      archive,
		Audit:        audit.RenderOptions{ExporterID: *exporterID, Signer: signer},
		Log:          log,
	})
	if archive != nil {
		grpccas.RegisterCASServer(s, &grpccas.Server{CAS: archive})
	}

	log.Info().
		Str("listen", lis.Addr().String()).
		Str("backend", cfg.Compute.Backend).
		Str("proof", cfg.Proof.System).
		Bool("archive", archive != nil).
		Msg("qpod listening")
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
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

// openArchive resolves the evidence archive. A JSON casconfig file wins
// over the YAML archive section; with neither, archiving is off.
func openArchive(yamlCfg config.ArchiveConfig, jsonPath string) (storage.CAS, func() error, error) {
	if jsonPath != "" {
		cc, err := casconfig.LoadFile(jsonPath)
		if err != nil {
			return nil, nil, err
		}
		return cc.Open(casregistry.UsageDaemon, "")
	}
	if !yamlCfg.Enabled {
		return nil, nil, nil
	}
	cc := casconfig.Config{
		Backends: []casconfig.BackendConfig{
			{Name: "localfs", ID: "root", Config: map[string]string{"localfs-dir": yamlCfg.Root}},
		},
	}
	if yamlCfg.Replica != "" {
		cc.WritePolicy = "all"
		cc.Backends = append(cc.Backends, casconfig.BackendConfig{
			Name: "localfs", ID: "replica", Config: map[string]string{"localfs-dir": yamlCfg.Replica},
		})
	}
	return cc.Open(casregistry.UsageDaemon, "")
}

func loadSigner(seedHex, signerName, signerRole string) (*audit.Signer, error) {
	if seedHex == "" && signerName == "" {
		return nil, nil
	}
	ks, err := keys.CreateKeyStore("")
	if err != nil {
		return nil, err
	}
	seed, err := ks.LoadSeed(seedHex, signerName, signerRole, "")
	if err != nil {
		return nil, err
	}
	return audit.NewSignerFromSeed(seed)
}
