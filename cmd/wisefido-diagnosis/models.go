package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/registry"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/service"

	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the model registry",
	}
	modelsCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load every artifact, validate shapes and run a probe diagnosis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelsCheck(cmd, cmd.OutOrStdout())
		},
	})
	return modelsCmd
}

// probeVitals 探测用的参考生命体征
var probeVitals = models.PatientVitals{BP: 120, HeartRate: 72, Glucose: 95, SpO2: 98, Sleep: 7, Steps: 8000}

func runModelsCheck(cmd *cobra.Command, out io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newCLILogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	reg, err := registry.Load(cfg.Diagnosis.ManifestPath, logger)
	if err != nil {
		return fmt.Errorf("model check failed: %w", err)
	}

	fmt.Fprintf(out, "manifest: %s\nversion:  %s\n\n", cfg.Diagnosis.ManifestPath, reg.Version())
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYSTEM\tKIND\tARTIFACT\tFEATURES\tTHRESHOLD\tSCALED")
	for _, m := range reg.Info() {
		threshold := "-"
		if m.Threshold != nil {
			threshold = fmt.Sprintf("%.2f", *m.Threshold)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
			m.System, m.Kind, m.Artifact, strings.Join(m.FeatureNames, ","), threshold, m.Scaled)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc := service.NewDiagnosisService(reg, cfg.Diagnosis.PredictorTimeout, logger)
	d, err := svc.Diagnose(ctx, models.DiagnoseRequest{RequestID: "models-check", Vitals: probeVitals.Input()})
	if err != nil {
		return fmt.Errorf("probe diagnosis failed: %w", err)
	}

	fmt.Fprintf(out, "\nprobe: class=%d (%s) meta=%d confidence=%.3f rule=%s\nok\n",
		int(d.FinalClass), d.DiseaseName, int(d.MetaClass), d.Confidence, d.RuleID)
	return nil
}
