package service

import (
	"time"

	"reelsmith/config"
	"reelsmith/internal/compositor"
	"reelsmith/internal/selection"
	"reelsmith/internal/storage"
	"reelsmith/internal/types"
	"reelsmith/internal/vision"
	"reelsmith/log"
	"reelsmith/pkg/captioner"
	"reelsmith/pkg/media"
	"reelsmith/pkg/ocr"
	"reelsmith/pkg/oss"

	"go.uber.org/zap"
)

const defaultAssetPrefix = "bank/"

type Service struct {
	Store      types.ObjectStore
	Captioner  types.CaptionProvider
	Detector   *vision.Detector
	Compositor *compositor.Compositor
	Engine     *selection.Engine

	assetPrefix    string
	outputPrefix   string
	watermarkLabel string
	sampleDepth    int
	candidateCount int
	maxBatch       int
	detectTimeout  time.Duration

	// dispatch hands render jobs to an external queue when one is
	// configured; nil means run in a local goroutine.
	dispatch func(RenderJob) error
}

// SetDispatcher routes newly started render jobs through the given queue
// instead of an in-process goroutine.
func (s *Service) SetDispatcher(dispatch func(RenderJob) error) {
	s.dispatch = dispatch
}

func NewService() *Service {
	cfg := config.Conf

	media.FfmpegPath = storage.FfmpegPath
	media.FfprobePath = storage.FfprobePath

	var primary, fallback types.TextRecognizer
	ocrTimeout := time.Duration(cfg.Ocr.TimeoutSecond) * time.Second
	if cfg.Ocr.RemoteURL != "" {
		fallback = ocr.NewRemote(cfg.Ocr.RemoteURL, cfg.Ocr.RemoteAPIKey, ocrTimeout)
	}
	switch cfg.Ocr.Backend {
	case "remote":
		if fallback == nil {
			log.GetLogger().Error("OCR backend is remote but remote_url is empty")
			return nil
		}
		primary = fallback
		fallback = nil
	default:
		tess, err := ocr.NewTesseract(cfg.Ocr.Languages)
		if err != nil {
			log.GetLogger().Error("Tesseract init failed, detection relies on the remote backend", zap.Error(err))
		} else {
			primary = tess
		}
	}
	if primary == nil {
		primary = fallback
		fallback = nil
	}
	log.GetLogger().Info("OCR backend selected", zap.String("backend", cfg.Ocr.Backend))

	detector := vision.NewDetector(primary,
		vision.WithFallback(fallback),
		vision.WithSampleDepth(cfg.Ocr.MaxSampleDepth),
		vision.WithMinConfidence(cfg.Ocr.MinConfidence),
		vision.WithPadding(cfg.Render.RegionPadding),
		vision.WithFallbackTopPct(cfg.Render.FallbackTopPct),
		vision.WithLogger(log.GetLogger()),
	)

	var compOpts []compositor.Option
	if cfg.Render.FontPath != "" {
		compOpts = append(compOpts, compositor.WithFontFile(cfg.Render.FontPath))
	}
	if cfg.Render.LogoPath != "" {
		compOpts = append(compOpts, compositor.WithLogoCache(compositor.NewLogoCache(cfg.Render.LogoPath)))
	}
	comp, err := compositor.New(compOpts...)
	if err != nil {
		log.GetLogger().Error("Compositor init failed", zap.Error(err))
		return nil
	}

	var provider types.CaptionProvider
	if cfg.Captioner.ApiKey != "" {
		provider = captioner.NewClient(
			cfg.Captioner.BaseUrl,
			cfg.Captioner.ApiKey,
			cfg.App.Proxy,
			cfg.Captioner.Model,
			time.Duration(cfg.Captioner.TimeoutSecond)*time.Second,
		)
	} else {
		log.GetLogger().Info("No caption API key configured, captions come from the phrase bank")
	}

	var store types.ObjectStore
	if cfg.Oss.Enabled {
		store = oss.NewStore(oss.Config{
			Endpoint:        cfg.Oss.Endpoint,
			Region:          cfg.Oss.Region,
			Bucket:          cfg.Oss.Bucket,
			AccessKeyID:     cfg.Oss.AccessKeyID,
			AccessKeySecret: cfg.Oss.AccessKeySecret,
		})
	} else {
		root, err := resolveBankRoot()
		if err != nil {
			log.GetLogger().Error("Local bank root resolution failed", zap.Error(err))
			return nil
		}
		store = oss.NewLocalStore(root)
		log.GetLogger().Info("Object storage disabled, serving the clip bank from disk", zap.String("root", root))
	}

	assetPrefix := cfg.Oss.AssetPrefix
	if assetPrefix == "" {
		assetPrefix = defaultAssetPrefix
	}
	outputPrefix := cfg.Oss.OutputPrefix
	if outputPrefix == "" {
		outputPrefix = "outputs/"
	}

	return &Service{
		Store:          store,
		Captioner:      provider,
		Detector:       detector,
		Compositor:     comp,
		Engine:         selection.NewEngine(assetPrefix),
		assetPrefix:    assetPrefix,
		outputPrefix:   outputPrefix,
		watermarkLabel: cfg.Render.WatermarkLabel,
		sampleDepth:    cfg.Ocr.MaxSampleDepth,
		candidateCount: cfg.Captioner.CandidateCount,
		maxBatch:       cfg.Selection.MaxBatch,
		detectTimeout:  ocrTimeout,
	}
}
