package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"VoxelForge/shared/util"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indica um documento de configuração fora do esquema.
var ErrInvalid = errors.New("configuração inválida")

//go:embed config.schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Config armazena as configurações do VoxelForge.
type Config struct {
	Window    Window    `yaml:"window" json:"window"`
	Volume    Volume    `yaml:"volume" json:"volume"`
	Pipeline  Pipeline  `yaml:"pipeline" json:"pipeline"`
	Generator Generator `yaml:"generator" json:"generator"`
	Camera    Camera    `yaml:"camera" json:"camera"`
	Debug     Debug     `yaml:"debug" json:"debug"`
}

// Janela
type Window struct {
	Width      int32  `yaml:"width" json:"width"`
	Height     int32  `yaml:"height" json:"height"`
	Title      string `yaml:"title" json:"title"`
	Fullscreen bool   `yaml:"fullscreen" json:"fullscreen"`
	TargetFPS  int32  `yaml:"target_fps" json:"target_fps"`
}

// Volume descreve as dimensões da grade em voxels.
type Volume struct {
	Size       [3]int32   `yaml:"size" json:"size"`
	ChunkSize  [3]int32   `yaml:"chunk_size" json:"chunk_size"`
	VoxelScale [3]float32 `yaml:"voxel_scale" json:"voxel_scale"`
}

func (v Volume) SizeIndex() util.Index {
	return util.NewIndex(v.Size[0], v.Size[1], v.Size[2])
}

func (v Volume) ChunkIndex() util.Index {
	return util.NewIndex(v.ChunkSize[0], v.ChunkSize[1], v.ChunkSize[2])
}

func (v Volume) Scale() mgl32.Vec3 {
	return mgl32.Vec3(v.VoxelScale)
}

// Pipeline configura a regeneração de chunks.
type Pipeline struct {
	MeshStrategy      string `yaml:"mesh_strategy" json:"mesh_strategy"`
	ColliderStrategy  string `yaml:"collider_strategy" json:"collider_strategy"`
	GenerateColliders bool   `yaml:"generate_colliders" json:"generate_colliders"`
	RegenerateNormals bool   `yaml:"regenerate_normals" json:"regenerate_normals"`
	Material          string `yaml:"material" json:"material"`
	Workers           int    `yaml:"workers" json:"workers"` // 0 = número de CPUs
	QueueSize         int    `yaml:"queue_size" json:"queue_size"`
	CommitBudgetMs    int    `yaml:"commit_budget_ms" json:"commit_budget_ms"`
	ResultCache       bool   `yaml:"result_cache" json:"result_cache"`
}

// Generator escolhe o conteúdo inicial do volume.
type Generator struct {
	Kind   string   `yaml:"kind" json:"kind"` // empty | fill | noise | sphere
	Seed   int64    `yaml:"seed" json:"seed"`
	Color  [4]uint8 `yaml:"color" json:"color"`
	Radius float32  `yaml:"radius" json:"radius"`
	Caves  bool     `yaml:"caves" json:"caves"`
}

// Câmera
type Camera struct {
	Speed       float32 `yaml:"speed" json:"speed"`
	Sensitivity float32 `yaml:"sensitivity" json:"sensitivity"`
	ZoomSpeed   float32 `yaml:"zoom_speed" json:"zoom_speed"`
	FOV         float32 `yaml:"fov" json:"fov"`
}

// Debug
type Debug struct {
	ShowColliders bool `yaml:"show_colliders" json:"show_colliders"`
	ShowDebugInfo bool `yaml:"show_debug_info" json:"show_debug_info"`
	ShowGrid      bool `yaml:"show_grid" json:"show_grid"`
	WireframeMode bool `yaml:"wireframe_mode" json:"wireframe_mode"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "VoxelForge",
			TargetFPS: 60,
		},
		Volume: Volume{
			Size:       [3]int32{64, 32, 64},
			ChunkSize:  [3]int32{16, 16, 16},
			VoxelScale: [3]float32{1, 1, 1},
		},
		Pipeline: Pipeline{
			MeshStrategy:      "offload-safe",
			ColliderStrategy:  "offload",
			GenerateColliders: true,
			Material:          "default",
			QueueSize:         256,
			CommitBudgetMs:    4,
			ResultCache:       true,
		},
		Generator: Generator{
			Kind:   "noise",
			Seed:   1337,
			Color:  [4]uint8{128, 128, 128, 255},
			Radius: 12,
		},
		Camera: Camera{
			Speed:       10.0,
			Sensitivity: 0.3,
			ZoomSpeed:   5.0,
			FOV:         60.0,
		},
		Debug: Debug{
			ShowDebugInfo: true,
		},
	}
}

// DefaultPath retorna config.yaml ao lado do executável.
func DefaultPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(filepath.Dir(execDir), "config.yaml")
}

// Load carrega as configurações de um arquivo YAML.
// Se o arquivo não existir, retorna as configurações padrão. Campos ausentes
// mantêm o valor padrão.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[Config] %s não encontrado, usando padrões", path)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save salva as configurações em um arquivo YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate confere o documento contra o esquema embutido.
func (c *Config) Validate() error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}

	// O validador trabalha sobre valores genéricos de encoding/json.
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("config.schema.json", schemaSource)
	})
	return schema, schemaErr
}
