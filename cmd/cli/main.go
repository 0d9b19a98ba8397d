package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"goclue/adapters/cluster"
	"goclue/adapters/excel"
	"goclue/adapters/postgres"
	"goclue/app"
	"goclue/domain/evaluation"
	"goclue/internal"
	"goclue/internal/config"
	"goclue/internal/testkit"
	"goclue/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "goclue",
		Short: "Cluster-number evaluation for time-course data",
		Long: `goclue scores repeated clusterings of a time-course matrix against an
annotation reference and reports the cluster count the evidence supports.`,
	}

	rootCmd.AddCommand(
		newEvaluateCmd(),
		newOptimizeCmd(),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newEvaluateCmd() *cobra.Command {
	var (
		matrixPath     string
		annotationPath string
		method         string
		repeats        int
		kMin, kMax     int
		kOverride      int
		cutoff         float64
		alpha          float64
		seed           int64
		skipOptimal    bool
		outputPath     string
		persist        bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run the full evaluation pipeline on a matrix and annotation file",
		Long: `Evaluate standardizes the matrix, clusters it repeatedly across the k
range, scores each partition by annotation enrichment, selects the best k,
and reports the optimal partition at that k.

Example: goclue evaluate --matrix data.csv --annotation groups.csv --method cmeans --repeats 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyDefaults(cfg.Evaluation, &method, &repeats, &kMin, &kMax, &cutoff, &alpha, &seed)

			m, err := excel.NewDataReader(matrixPath).ReadMatrix()
			if err != nil {
				return fmt.Errorf("failed to read matrix: %w", err)
			}
			ann, err := excel.NewDataReader(annotationPath).ReadAnnotation()
			if err != nil {
				return fmt.Errorf("failed to read annotation: %w", err)
			}

			var repo ports.RunRepository
			if persist {
				if cfg.Database.URL == "" {
					return fmt.Errorf("--persist requires DATABASE_URL")
				}
				db, err := postgres.Connect(cfg.Database.URL)
				if err != nil {
					return err
				}
				defer db.Close()
				repo = postgres.NewRunRepository(db)
			}

			service := app.NewEvaluationService(cluster.NewRegistry(), repo, internal.DefaultLogger)
			record, err := service.Evaluate(cmd.Context(), app.EvaluateRequest{
				Matrix:     m,
				Annotation: ann,
				Params: evaluation.Params{
					Repeats:       repeats,
					KRange:        krange(kMin, kMax),
					Method:        method,
					EffectiveSize: evaluation.SizeRange{Min: cfg.Evaluation.EffectiveSizeMin, Max: cfg.Evaluation.EffectiveSizeMax},
					PValueCutoff:  cutoff,
					Alpha:         alpha,
					Seed:          seed,
					MaxIterations: cfg.Evaluation.MaxIterations,
				},
				KOverride:   kOverride,
				SkipOptimal: skipOptimal,
			})
			if err != nil {
				return err
			}

			printSummary(cmd, record)
			if outputPath != "" {
				if err := writeJSON(outputPath, record); err != nil {
					return err
				}
				cmd.Printf("full record written to %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&matrixPath, "matrix", "", "time-course matrix file (.csv or .xlsx)")
	cmd.Flags().StringVar(&annotationPath, "annotation", "", "annotation file (.csv or .xlsx)")
	cmd.Flags().StringVar(&method, "method", "", "clustering method (cmeans or kmeans)")
	cmd.Flags().IntVar(&repeats, "repeats", 0, "clustering repeats per k")
	cmd.Flags().IntVar(&kMin, "k-min", 0, "smallest cluster count to evaluate")
	cmd.Flags().IntVar(&kMax, "k-max", 0, "largest cluster count to evaluate")
	cmd.Flags().IntVar(&kOverride, "k", 0, "skip k selection and optimize at this k")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "enrichment p-value cutoff")
	cmd.Flags().Float64Var(&alpha, "alpha", -1, "regularization weight on cluster count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for deterministic runs")
	cmd.Flags().BoolVar(&skipOptimal, "skip-optimal", false, "stop after k selection")
	cmd.Flags().StringVar(&outputPath, "output", "", "write the full run record as JSON to this path")
	cmd.Flags().BoolVar(&persist, "persist", false, "save the run record to DATABASE_URL")
	cmd.MarkFlagRequired("matrix")
	cmd.MarkFlagRequired("annotation")

	return cmd
}

// applyDefaults fills unset flags from the environment-backed configuration
func applyDefaults(cfg config.EvaluationConfig, method *string, repeats, kMin, kMax *int, cutoff, alpha *float64, seed *int64) {
	if *method == "" {
		*method = cfg.Method
	}
	if *repeats == 0 {
		*repeats = cfg.Repeats
	}
	if *kMin == 0 {
		*kMin = cfg.KMin
	}
	if *kMax == 0 {
		*kMax = cfg.KMax
	}
	if *cutoff == 0 {
		*cutoff = cfg.PValueCutoff
	}
	if *alpha < 0 {
		*alpha = cfg.Alpha
	}
	if *seed == 0 {
		*seed = cfg.Seed
	}
}

func krange(min, max int) []int {
	var ks []int
	for k := min; k <= max; k++ {
		ks = append(ks, k)
	}
	return ks
}

func printSummary(cmd *cobra.Command, record *ports.RunRecord) {
	cmd.Printf("run %s\n", record.RunID)
	cmd.Printf("selected k: %d (method %s, %d repeats)\n",
		record.Evaluation.SelectedK, record.Evaluation.Method, record.Evaluation.Repeats)
	if record.Best == nil {
		return
	}
	cmd.Printf("best partition: k=%d, combined p=%.4g, converged=%v\n",
		record.Best.K, record.Enrichment.CombinedP, record.Best.Converged)
	for _, ce := range record.Enrichment.Clusters {
		cmd.Printf("  cluster %d (%d members): %d enriched group(s)\n", ce.Cluster, ce.Size, len(ce.Groups))
		for _, gs := range ce.Groups {
			cmd.Printf("    %-24s p=%.4g overlap=%d/%d\n", gs.Group, gs.PValue, gs.Overlap, gs.GroupSize)
		}
	}
}

func newOptimizeCmd() *cobra.Command {
	var (
		matrixPath     string
		annotationPath string
		method         string
		repeats        int
		k              int
		cutoff         float64
		alpha          float64
		seed           int64
		outputPath     string
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Find the best partition at a fixed cluster count",
		Long: `Optimize skips the cluster-number evaluation and reports the partition
with the strongest enrichment out of repeated clusterings at the given k.

Example: goclue optimize --matrix data.csv --annotation groups.csv --k 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			kMin, kMax := 0, 0
			applyDefaults(cfg.Evaluation, &method, &repeats, &kMin, &kMax, &cutoff, &alpha, &seed)

			m, err := excel.NewDataReader(matrixPath).ReadMatrix()
			if err != nil {
				return fmt.Errorf("failed to read matrix: %w", err)
			}
			ann, err := excel.NewDataReader(annotationPath).ReadAnnotation()
			if err != nil {
				return fmt.Errorf("failed to read annotation: %w", err)
			}

			service := app.NewEvaluationService(cluster.NewRegistry(), nil, internal.DefaultLogger)
			record, err := service.OptimizeDataset(cmd.Context(), app.OptimizeRequest{
				Matrix:     m,
				Annotation: ann,
				K:          k,
				Params: evaluation.Params{
					Repeats:       repeats,
					Method:        method,
					EffectiveSize: evaluation.SizeRange{Min: cfg.Evaluation.EffectiveSizeMin, Max: cfg.Evaluation.EffectiveSizeMax},
					PValueCutoff:  cutoff,
					Alpha:         alpha,
					Seed:          seed,
					MaxIterations: cfg.Evaluation.MaxIterations,
				},
			})
			if err != nil {
				return err
			}

			printSummary(cmd, record)
			if outputPath != "" {
				if err := writeJSON(outputPath, record); err != nil {
					return err
				}
				cmd.Printf("full record written to %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&matrixPath, "matrix", "", "time-course matrix file (.csv or .xlsx)")
	cmd.Flags().StringVar(&annotationPath, "annotation", "", "annotation file (.csv or .xlsx)")
	cmd.Flags().IntVar(&k, "k", 0, "cluster count to optimize at")
	cmd.Flags().StringVar(&method, "method", "", "clustering method (cmeans or kmeans)")
	cmd.Flags().IntVar(&repeats, "repeats", 0, "clustering repeats")
	cmd.Flags().Float64Var(&cutoff, "cutoff", 0, "enrichment p-value cutoff")
	cmd.Flags().Float64Var(&alpha, "alpha", -1, "regularization weight on cluster count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for deterministic runs")
	cmd.Flags().StringVar(&outputPath, "output", "", "write the full run record as JSON to this path")
	cmd.MarkFlagRequired("matrix")
	cmd.MarkFlagRequired("annotation")
	cmd.MarkFlagRequired("k")

	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		rows       int
		noise      float64
		noiseGroup int
		seed       int64
		outPrefix  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset with three planted profile shapes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := testkit.Generate(testkit.GeneratorConfig{
				Profiles:    testkit.DefaultProfiles(rows),
				Noise:       noise,
				NoiseGroups: noiseGroup,
				Seed:        seed,
			})
			if err != nil {
				return err
			}

			matrixPath := outPrefix + "_matrix.csv"
			annotationPath := outPrefix + "_annotation.csv"
			if err := writeMatrixCSV(matrixPath, ds); err != nil {
				return err
			}
			if err := writeAnnotationCSV(annotationPath, ds); err != nil {
				return err
			}
			cmd.Printf("wrote %s and %s (%d rows, %d groups)\n",
				matrixPath, annotationPath, ds.Matrix.Rows(), len(ds.Annotation))
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 40, "rows per planted shape")
	cmd.Flags().Float64Var(&noise, "noise", 0.1, "gaussian noise stddev")
	cmd.Flags().IntVar(&noiseGroup, "noise-groups", 10, "random annotation groups without structure")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&outPrefix, "out", "synthetic", "output path prefix")

	return cmd
}

func writeMatrixCSV(path string, ds *testkit.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"entity"}
	for j := 0; j < ds.Matrix.Cols(); j++ {
		header = append(header, "t"+strconv.Itoa(j))
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, entity := range ds.Matrix.Entities {
		row := []string{string(entity)}
		for _, v := range ds.Matrix.Data[i] {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeAnnotationCSV(path string, ds *testkit.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, group := range ds.Annotation.Groups() {
		var members []string
		for entity := range ds.Annotation[group] {
			members = append(members, string(entity))
		}
		sort.Strings(members)
		if err := w.Write(append([]string{string(group)}, members...)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
