package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"VoxelForge/shared/config"
	"VoxelForge/visualizador/internal/app"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO. Ela também é a
	// thread de commit do pipeline.
	runtime.LockOSThread()

	configPath := flag.String("config", config.DefaultPath(), "Arquivo de configuração YAML")
	meshStrategy := flag.String("mesh", "", "Estratégia de malha: inline, offload-safe, offload-unsafe")
	colliderStrategy := flag.String("collider", "", "Estratégia de colisão: inline, offload")
	generator := flag.String("gen", "", "Gerador: empty, fill, noise, sphere")
	seed := flag.Int64("seed", 0, "Semente do gerador de ruído")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug e colisores")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	logFile := flag.String("log", "", "Gravar o log neste arquivo")
	flag.Parse()

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err == nil {
			log.SetOutput(f)
			defer f.Close()
		}
	}
	log.SetFlags(log.Ltime | log.Lshortfile)
	log.Println("--- INICIANDO VOXELFORGE ---")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Config] %v", err)
	}

	// Flags sobrescrevem o config salvo
	if *meshStrategy != "" {
		cfg.Pipeline.MeshStrategy = *meshStrategy
	}
	if *colliderStrategy != "" {
		cfg.Pipeline.ColliderStrategy = *colliderStrategy
	}
	if *generator != "" {
		cfg.Generator.Kind = *generator
	}
	if *seed != 0 {
		cfg.Generator.Seed = *seed
	}
	if *fullscreen {
		cfg.Window.Fullscreen = true
	}
	if *debug {
		cfg.Debug.ShowDebugInfo = true
		cfg.Debug.ShowColliders = true
	}
	if *width > 0 {
		cfg.Window.Width = int32(*width)
	}
	if *height > 0 {
		cfg.Window.Height = int32(*height)
	}

	if err := app.New(cfg, *configPath).Run(); err != nil {
		log.Fatalf("[App] %v", err)
	}
}
