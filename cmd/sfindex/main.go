// Command sfindex loads brand-segmented inventory data and answers
// attribute filters via square-free-integer divisibility.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	minioclient "github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/sfindex"
	"github.com/hupe1980/sfindex/blobstore"
	minioblob "github.com/hupe1980/sfindex/blobstore/minio"
	s3blob "github.com/hupe1980/sfindex/blobstore/s3"
	"github.com/hupe1980/sfindex/segment"
)

var (
	dataDir       string
	segmentName   string
	excludedKeys  []string
	s3Bucket      string
	s3Prefix      string
	minioEndpoint string
	minioBucket   string
	minioAccess   string
	minioSecret   string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "sfindex",
	Short: "Prime-product attribute filtering over inventory segments",
	Long: `sfindex encodes categorical attributes (color, size, material, ...) into one
square-free integer per record and filters tens of thousands of records with
one integer division each.`,
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a segment by selected attribute values",
	RunE: func(cmd *cobra.Command, args []string) error {
		selects, _ := cmd.Flags().GetStringArray("select")
		sel := sfindex.Selection{}
		for _, s := range selects {
			key, value, ok := strings.Cut(s, "=")
			if !ok {
				return fmt.Errorf("invalid --select %q, want key=value", s)
			}
			sel[key] = append(sel[key], value)
		}

		ctx := context.Background()
		eng, err := loadEngine(ctx)
		if err != nil {
			return err
		}
		matches, err := eng.FilterSelection(ctx, sel)
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("%s\t%v\n", m.ID, m.SFIs)
		}
		fmt.Fprintf(os.Stderr, "%d of %d records match\n", len(matches), eng.Len())
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print record and dictionary statistics for a segment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		bs, err := openBlobStore()
		if err != nil {
			return err
		}
		loader := segment.NewLoader(bs)
		seg, err := loader.Load(ctx, segmentName)
		if err != nil {
			return err
		}

		keys := dictionaryKeys(seg)
		fmt.Printf("segment:    %s\n", seg.Name)
		fmt.Printf("records:    %d\n", len(seg.Records))
		fmt.Printf("attributes: %s\n", strings.Join(keys, ", "))
		for _, key := range keys {
			fmt.Printf("  %-10s %d values\n", key, len(seg.Primes[key]))
		}
		for _, w := range seg.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <out-file>",
	Short: "Encode a segment and write the store snapshot to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		eng, err := loadEngine(ctx)
		if err != nil {
			return err
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		if err := eng.SaveSnapshot(f); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %d records to %s\n", eng.Len(), args[0])
		return nil
	},
}

// loadEngine discovers the segment's attribute keys from its primes
// document, then loads it into a flat single-tier engine.
func loadEngine(ctx context.Context) (*sfindex.Engine, error) {
	bs, err := openBlobStore()
	if err != nil {
		return nil, err
	}
	loader := segment.NewLoader(bs)
	seg, err := loader.Load(ctx, segmentName)
	if err != nil {
		return nil, err
	}

	opts := []sfindex.Option{sfindex.WithExcludedKeys(excludedKeys...)}
	if !verbose {
		opts = append(opts, sfindex.WithLogger(sfindex.NewTextLogger(slog.LevelWarn)))
	}
	eng, err := sfindex.New(sfindex.SingleTier("attrs", dictionaryKeys(seg)), opts...)
	if err != nil {
		return nil, err
	}
	if err := eng.Load(seg.Primes, seg.Records); err != nil {
		return nil, err
	}
	return eng, nil
}

func dictionaryKeys(seg *segment.Segment) []string {
	keys := make([]string, 0, len(seg.Primes))
	for key := range seg.Primes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func openBlobStore() (blobstore.BlobStore, error) {
	switch {
	case s3Bucket != "":
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		return s3blob.NewStore(awss3.NewFromConfig(cfg), s3Bucket, s3Prefix), nil
	case minioEndpoint != "":
		client, err := minioclient.New(minioEndpoint, &minioclient.Options{
			Creds: miniocreds.NewStaticV4(minioAccess, minioSecret, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("connect to MinIO: %w", err)
		}
		return minioblob.NewStore(client, minioBucket, s3Prefix), nil
	default:
		return blobstore.NewLocalStore(dataDir), nil
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "data/segments", "local segment data directory")
	rootCmd.PersistentFlags().StringVar(&segmentName, "segment", "", "segment (brand) name")
	rootCmd.PersistentFlags().StringSliceVar(&excludedKeys, "exclude", []string{"brand"}, "attribute keys excluded from SFI computation")
	rootCmd.PersistentFlags().StringVar(&s3Bucket, "s3-bucket", "", "fetch segments from this S3 bucket instead of --data")
	rootCmd.PersistentFlags().StringVar(&s3Prefix, "prefix", "", "object key prefix for remote stores")
	rootCmd.PersistentFlags().StringVar(&minioEndpoint, "minio-endpoint", "", "fetch segments from this MinIO endpoint instead of --data")
	rootCmd.PersistentFlags().StringVar(&minioBucket, "minio-bucket", "", "MinIO bucket name")
	rootCmd.PersistentFlags().StringVar(&minioAccess, "minio-access-key", "", "MinIO access key")
	rootCmd.PersistentFlags().StringVar(&minioSecret, "minio-secret-key", "", "MinIO secret key")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	filterCmd.Flags().StringArray("select", nil, "attribute selection key=value (repeatable)")

	rootCmd.AddCommand(genCmd, filterCmd, statsCmd, snapshotCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
