// Comando builder compila os binários do VoxelForge para a plataforma atual.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

type component struct {
	name    string
	dir     string
	output  string
	cgo     bool
	ldflags string
}

func main() {
	outDir := flag.String("out", "bin", "Diretório de saída")
	test := flag.Bool("test", true, "Rodar os testes dos pacotes sem GPU antes de compilar")
	skipViewer := flag.Bool("headless-only", false, "Não compilar o visualizador (sem CGO)")
	flag.Parse()

	fmt.Println(ColorCyan + "VoxelForge Builder" + ColorReset)
	start := time.Now()

	setupEnvironment()

	if *test {
		if err := runTests(); err != nil {
			fatal(err)
		}
	}

	viewerFlags := "-s -w"
	if runtime.GOOS == "windows" {
		viewerFlags += " -H=windowsgui"
	}
	components := []component{
		{"HEADLESS (Pure Go)", "headless", exe(filepath.Join(*outDir, "voxelforge-headless")), false, "-s -w"},
	}
	if !*skipViewer {
		components = append(components,
			component{"VISUALIZADOR (CGO + raylib)", "visualizador", exe(filepath.Join(*outDir, "voxelforge")), true, viewerFlags})
	}

	for i, c := range components {
		fmt.Printf(ColorYellow+"\n[%d/%d] "+ColorReset, i+1, len(components))
		if err := buildComponent(c); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
}

func exe(path string) string {
	if runtime.GOOS == "windows" {
		return path + ".exe"
	}
	return path
}

func setupEnvironment() {
	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
	}
}

// runTests roda os testes de tudo que não depende da raylib.
func runTests() error {
	fmt.Println(ColorYellow + "\n[+] Rodando testes..." + ColorReset)
	cmd := exec.Command("go", "test", "./shared/...", "./internal/...")
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("testes falharam: %v", err)
	}
	return nil
}

func buildComponent(c component) error {
	fmt.Printf(ColorYellow+"Compilando %s..."+ColorReset+"\n", c.name)

	cgoValue := "0"
	if c.cgo {
		cgoValue = "1"
	}

	args := []string{"build", "-ldflags", c.ldflags, "-o", c.output, "./" + c.dir}
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("falha ao compilar %s: %v", c.name, err)
	}

	fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", c.name, c.output)
	return nil
}

func fatal(err error) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	os.Exit(1)
}
