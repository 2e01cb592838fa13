package risk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// sklearn-onnx conventions for exported classifiers.
const (
	onnxInputName  = "float_input"
	onnxOutputName = "output_label"
	modelSuffix    = "_model.onnx"
)

// Classifier is an opaque binary predictor over a fixed, ordered
// feature row.
type Classifier interface {
	Predict(ctx context.Context, features []float32) (int, error)
}

// ModelCache lazily loads ONNX classifiers by condition name from a
// models directory. Each name is resolved at most once per process in
// the common case; concurrent first loads may duplicate work, with the
// last writer winning, but the cache is never corrupted. A missing
// model file or an unavailable ONNX runtime is cached as nil so scoring
// degrades to rules only.
type ModelCache struct {
	dir    string
	ortLib string
	logger *slog.Logger

	ortOnce  sync.Once
	ortReady bool

	mu     sync.RWMutex
	models map[string]Classifier
}

// NewModelCache builds a cache rooted at dir. ortLib optionally points
// at the onnxruntime shared library; empty means the platform default.
func NewModelCache(dir, ortLib string, logger *slog.Logger) *ModelCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelCache{
		dir:    dir,
		ortLib: ortLib,
		logger: logger,
		models: make(map[string]Classifier),
	}
}

// Get returns the classifier for name, or nil when unavailable.
func (c *ModelCache) Get(name string) Classifier {
	c.mu.RLock()
	m, ok := c.models[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	m = c.load(name)

	c.mu.Lock()
	c.models[name] = m
	c.mu.Unlock()
	return m
}

// Close releases every loaded session.
func (c *ModelCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, m := range c.models {
		if s, ok := m.(*onnxClassifier); ok && s.session != nil {
			if err := s.session.Destroy(); err != nil {
				c.logger.Warn("destroy onnx session", "model", name, "error", err)
			}
		}
	}
	c.models = make(map[string]Classifier)
}

func (c *ModelCache) load(name string) Classifier {
	path := filepath.Join(c.dir, name+modelSuffix)
	if _, err := os.Stat(path); err != nil {
		c.logger.Debug("no classifier model", "model", name, "path", path)
		return nil
	}
	if !c.initRuntime() {
		return nil
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{onnxInputName}, []string{onnxOutputName}, nil)
	if err != nil {
		c.logger.Warn("load classifier failed", "model", name, "error", err)
		return nil
	}
	c.logger.Info("classifier loaded", "model", name, "path", path)
	return &onnxClassifier{session: session}
}

// initRuntime initializes the ONNX environment once per process.
func (c *ModelCache) initRuntime() bool {
	c.ortOnce.Do(func() {
		if c.ortLib != "" {
			ort.SetSharedLibraryPath(c.ortLib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			c.logger.Warn("onnx runtime unavailable; scoring is rule-only", "error", err)
			return
		}
		c.ortReady = true
	})
	return c.ortReady
}

type onnxClassifier struct {
	session *ort.DynamicAdvancedSession

	// onnxruntime sessions are not safe for concurrent Run calls
	mu sync.Mutex
}

func (m *onnxClassifier) Predict(_ context.Context, features []float32) (int, error) {
	input, err := ort.NewTensor(ort.NewShape(1, int64(len(features))), features)
	if err != nil {
		return 0, fmt.Errorf("build input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	m.mu.Lock()
	err = m.session.Run([]ort.Value{input}, outputs)
	m.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("run session: %w", err)
	}
	defer outputs[0].Destroy()

	switch t := outputs[0].(type) {
	case *ort.Tensor[int64]:
		data := t.GetData()
		if len(data) == 0 {
			return 0, fmt.Errorf("empty label tensor")
		}
		return int(data[0]), nil
	case *ort.Tensor[float32]:
		data := t.GetData()
		if len(data) == 0 {
			return 0, fmt.Errorf("empty score tensor")
		}
		if data[0] >= 0.5 {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
}
