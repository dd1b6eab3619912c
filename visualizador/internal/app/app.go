package app

import (
	"log"

	"VoxelForge/internal/engine"
	"VoxelForge/internal/gen"
	"VoxelForge/shared/config"
	"VoxelForge/visualizador/internal/camera"
	"VoxelForge/visualizador/internal/render"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Alcance máximo de edição, em unidades de mundo.
const editReach = 256

// App é o visualizador interativo.
type App struct {
	Config     *config.Config
	ConfigPath string

	Cam      *camera.Controller
	engine   *engine.Engine
	renderer *render.Renderer

	frameCount    int
	lastRequested int
	lastCommitted int
	selected      *mgl32.Vec3 // canto do voxel sob o cursor
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config, configPath string) *App {
	return &App{Config: cfg, ConfigPath: configPath}
}

// Run abre a janela e roda o loop principal. Precisa rodar na thread do SO
// travada pelo main, porque a raylib também é a thread de commit.
func (a *App) Run() error {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado: %v", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.Window.Width, a.Config.Window.Height, a.Config.Window.Title)
	rl.SetTraceLogLevel(rl.LogWarning)
	defer rl.CloseWindow()

	if a.Config.Window.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.Window.TargetFPS)
	rl.SetExitKey(0)

	a.renderer = render.NewRenderer()
	a.renderer.Tints[a.Config.Pipeline.Material] = rl.White

	e, err := engine.New(a.Config, a.renderer)
	if err != nil {
		return err
	}
	a.engine = e

	a.Cam = camera.New(a.Config.Camera)
	min, max := e.Volume.Bounds()
	a.Cam.Frame(min, max)

	log.Printf("[App] Janela %dx%d, pipeline %+v",
		a.Config.Window.Width, a.Config.Window.Height, e.Pipeline.Options())

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	return nil
}

// update processa entrada, dispara regenerações e aplica commits.
func (a *App) update() {
	a.frameCount++
	dt := rl.GetFrameTime()

	a.Cam.HandleInput(dt)
	a.Cam.Update(dt)
	a.updateInput()

	a.lastRequested, a.lastCommitted = a.engine.Tick()
}

func (a *App) updateInput() {
	if rl.IsKeyPressed(rl.KeyF1) {
		a.Config.Debug.ShowDebugInfo = !a.Config.Debug.ShowDebugInfo
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		a.Config.Debug.ShowColliders = !a.Config.Debug.ShowColliders
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.Debug.WireframeMode = !a.Config.Debug.WireframeMode
	}
	if rl.IsKeyPressed(rl.KeyG) {
		a.Config.Debug.ShowGrid = !a.Config.Debug.ShowGrid
	}

	ray := rl.GetMouseRay(rl.GetMousePosition(), a.Cam.RLCamera)
	from := mgl32.Vec3{ray.Position.X, ray.Position.Y, ray.Position.Z}
	dir := mgl32.Vec3{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}

	a.selected = nil
	if hit, _, ok := a.engine.Volume.Raycast(from, dir, editReach); ok {
		corner := a.engine.Volume.IndexToWorld(hit)
		a.selected = &corner
	}

	switch {
	case rl.IsMouseButtonPressed(rl.MouseLeftButton):
		a.engine.Dig(from, dir, editReach)
	case rl.IsMouseButtonPressed(rl.MouseMiddleButton):
		a.engine.Place(from, dir, editReach, gen.Stone)
	}

	// Reconstrói tudo, útil para observar supersessão sob carga.
	if rl.IsKeyPressed(rl.KeyR) {
		a.engine.Volume.MarkAll()
	}
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	log.Println("[App] Finalizando aplicação...")

	st := a.engine.Pipeline.Stats()
	log.Printf("[App] Estatísticas finais: %+v", st)

	a.engine.Close()
	a.renderer.Unload()

	if a.ConfigPath != "" {
		if err := a.Config.Save(a.ConfigPath); err != nil {
			log.Printf("[App] Erro ao salvar configurações: %v", err)
		}
	}
}
