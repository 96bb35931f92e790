package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/models"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/registry"
	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/service"

	"github.com/spf13/cobra"
)

// vitalFlags 生命体征命令行参数 -> VitalsInput 字段
var vitalFlags = []struct {
	name  string
	usage string
}{
	{"bp", "Systolic blood pressure (mmHg)"},
	{"heart-rate", "Heart rate (bpm)"},
	{"glucose", "Blood glucose (mg/dL)"},
	{"spo2", "Oxygen saturation (%)"},
	{"sleep", "Sleep duration (hours)"},
	{"steps", "Daily step count"},
}

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run one diagnosis from flags or a JSON request file",
		Example: `  wisefido-diagnosis predict --bp 150 --heart-rate 88 --glucose 110 --spo2 95 --sleep 6 --steps 3000
  wisefido-diagnosis predict --input request.json
  echo '{"vitals":{...}}' | wisefido-diagnosis predict --input -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("input", "", "JSON request file ({patient_id, vitals}); '-' reads stdin")
	cmd.Flags().String("patient-id", "", "Patient ID attached to the diagnosis")
	cmd.Flags().Bool("pretty", true, "Indent JSON output")
	for _, f := range vitalFlags {
		cmd.Flags().Float64(f.name, 0, f.usage)
	}
	return cmd
}

func runPredict(cmd *cobra.Command, stdin io.Reader, stdout io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newCLILogger(cmd)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	req, err := buildRequest(cmd, stdin)
	if err != nil {
		return err
	}

	reg, err := registry.Load(cfg.Diagnosis.ManifestPath, logger)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}
	svc := service.NewDiagnosisService(reg, cfg.Diagnosis.PredictorTimeout, logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d, err := svc.Diagnose(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(d)
}

// buildRequest --input 优先，否则由生命体征参数组装
// 未指定的参数保持缺失，由流水线报告 MissingFeatureError
func buildRequest(cmd *cobra.Command, stdin io.Reader) (models.DiagnoseRequest, error) {
	var req models.DiagnoseRequest

	if path, _ := cmd.Flags().GetString("input"); path != "" {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return req, fmt.Errorf("failed to read input: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("failed to parse input: %w", err)
		}
	} else {
		targets := []**float64{
			&req.Vitals.BP,
			&req.Vitals.HeartRate,
			&req.Vitals.Glucose,
			&req.Vitals.SpO2,
			&req.Vitals.Sleep,
			&req.Vitals.Steps,
		}
		for i, f := range vitalFlags {
			if !cmd.Flags().Changed(f.name) {
				continue
			}
			v, err := cmd.Flags().GetFloat64(f.name)
			if err != nil {
				return req, err
			}
			*targets[i] = &v
		}
	}

	if id, _ := cmd.Flags().GetString("patient-id"); id != "" {
		req.PatientID = id
	}
	return req, nil
}
