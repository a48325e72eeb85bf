package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/place-analyzer/internal/analyzer"
	"github.com/fpang/place-analyzer/internal/cache"
	"github.com/fpang/place-analyzer/internal/config"
	"github.com/fpang/place-analyzer/internal/inference"
	"github.com/fpang/place-analyzer/internal/logging"
	"github.com/fpang/place-analyzer/internal/media"
)

// CLI flags
var (
	inputFlag     string
	configFlag    string
	modelFlag     string
	noImagesFlag  bool
	maxImagesFlag int
	refreshFlag   bool
)

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "place-analyzer",
	Short: "AI-powered place detection for social media posts",
	Long: `place-analyzer reads a social post (text plus image URLs), downloads and
normalizes the images, and asks Gemini to identify the place the post is
about. Results carry a composed confidence score and are cached with a
confidence-tiered TTL.

The input is a JSON document:

  {
    "sourceUrl": "https://instagram.com/p/abc",
    "text": "best pour-over in town #BlueBottle",
    "hashtags": ["coffee"],
    "imageUrls": ["https://cdn.example.com/1.jpg"],
    "platform": "instagram"
  }

Examples:
  place-analyzer --input post.json
  cat post.json | place-analyzer --input -
  place-analyzer --input post.json --no-images
  place-analyzer --input post.json --max-images 2 --refresh`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Post JSON file to analyze ('-' for stdin)")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Optional YAML config file")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model override (e.g., gemini-3-pro-preview)")
	rootCmd.Flags().BoolVar(&noImagesFlag, "no-images", false, "Skip image analysis, use post text only")
	rootCmd.Flags().IntVar(&maxImagesFlag, "max-images", 0, "Images to analyze per post, 1-5 (0 = configured default)")
	rootCmd.Flags().BoolVar(&refreshFlag, "refresh", false, "Bypass the cache and re-analyze")
	if err := rootCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	cfg, err := config.Load(configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if modelFlag != "" {
		cfg.Inference.Model = modelFlag
	}

	input, err := readInput(inputFlag)
	if err != nil {
		log.Fatal().Err(err).Str("input", inputFlag).Msg("failed to read post input")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("No API key configured. Set GEMINI_API_KEY")
	}

	ctx := context.Background()
	httpClient := media.NewHTTPClient()

	client, err := inference.NewGeminiClient(ctx, apiKey, httpClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}
	log.Debug().Str("model", cfg.Inference.Model).Msg("Gemini client initialized")

	store := openStore(cfg.Cache)
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("cache store close failed")
		}
	}()

	fetcher := media.NewHTTPFetcher(httpClient, cfg.Media)
	normalizer := media.NewImageNormalizer(cfg.Media, nil)
	batch := media.NewBatchProcessor(fetcher, normalizer, cfg.Media.Concurrency)
	adapter := inference.NewAdapter(client, cfg.Inference)
	cacheMgr := cache.NewManager(store, cfg.Cache)

	a := analyzer.New(batch, adapter, cacheMgr, cfg.Media)

	opts := analyzer.DefaultOptions()
	opts.EnableImageAnalysis = !noImagesFlag
	opts.MaxImages = maxImagesFlag
	opts.BypassCache = refreshFlag

	result, err := a.Analyze(ctx, *input, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	printResult(result)
}

// readInput loads and decodes the post JSON from a file or stdin.
func readInput(path string) (*analyzer.ContentInput, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var input analyzer.ContentInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("decode post JSON: %w", err)
	}
	return &input, nil
}

// openStore selects the shared cache tier. Without a configured directory the
// run uses an in-memory store, which only serves the process lifetime.
func openStore(cfg config.CacheConfig) cache.BlobStore {
	if cfg.Dir == "" {
		log.Debug().Msg("No cache directory configured, using in-memory store")
		return cache.NewMemoryStore()
	}
	store, err := cache.OpenBadger(cfg.Dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.Dir).Msg("Shared cache unavailable, falling back to memory")
		return cache.NewMemoryStore()
	}
	return store
}

// printResult renders the analysis summary and the full JSON payload.
func printResult(result *analyzer.Result) {
	fmt.Println()
	fmt.Println("============================================")
	fmt.Println("📍 Place Analysis")
	fmt.Println("============================================")
	fmt.Printf("Name: %s\n", result.Place.Name)
	if result.Place.Address != nil {
		fmt.Printf("Address: %s\n", *result.Place.Address)
	}
	if len(result.Place.Categories) > 0 {
		fmt.Printf("Categories: %v\n", result.Place.Categories)
	}
	fmt.Printf("Confidence: %.2f\n", result.FinalConfidence)
	if result.Degraded {
		fmt.Println("⚠️  Degraded: analyzed from text only, all images failed")
	}
	if result.Metadata.CacheHit {
		fmt.Println("(served from cache)")
	}
	fmt.Println("--------------------------------------------")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
	fmt.Println(string(data))
}
