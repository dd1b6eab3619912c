package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	a.drawScene()
	a.drawHUD()

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)

	if a.Config.Debug.ShowGrid {
		rl.DrawGrid(64, 1.0)
	}

	a.renderer.Draw(a.Config.Debug.WireframeMode)

	if a.Config.Debug.ShowColliders {
		a.renderer.DrawColliders(a.engine.Physics)
	}
	if a.selected != nil {
		a.renderer.DrawSelection(*a.selected, a.engine.Volume.VoxelScale())
	}

	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.Debug.ShowDebugInfo {
		return
	}

	width := int32(330)
	height := int32(230)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	opts := a.engine.Pipeline.Options()
	rl.DrawText(fmt.Sprintf("malha: %s  colisão: %s", opts.Mesh, opts.Collider), x+10, y+38, 14, rl.LightGray)

	rl.DrawLine(x+10, y+58, x+width-10, y+58, rl.NewColor(100, 100, 100, 100))
	rl.DrawText("PIPELINE", x+10, y+66, 12, rl.Gray)

	st := a.engine.Pipeline.Stats()
	lines := []string{
		fmt.Sprintf("Pedidas: %d  Aplicadas: %d", st.Requested, st.Committed),
		fmt.Sprintf("Canceladas: %d  Falhas: %d", st.Cancelled, st.Failed),
		fmt.Sprintf("Em andamento: %d  Fila de commit: %d", st.Running, st.PendingCommits),
		fmt.Sprintf("Cache: %d  Erros de teardown: %d", st.CacheHits, st.TeardownErrors),
	}
	for i, l := range lines {
		rl.DrawText(l, x+10, y+82+int32(i)*18, 14, rl.White)
	}

	models, tris, uploads := a.renderer.Stats()
	rl.DrawLine(x+10, y+158, x+width-10, y+158, rl.NewColor(100, 100, 100, 100))
	rl.DrawText(fmt.Sprintf("Modelos: %d  Triângulos: %d", models, tris), x+10, y+166, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Uploads: %d  Colisores: %d", uploads, a.engine.Physics.Len()), x+10, y+184, 14, rl.LightGray)
	rl.DrawText("LMB cava  MMB coloca  R refaz  F1-F3 debug", x+10, y+206, 12, rl.Gray)
}
