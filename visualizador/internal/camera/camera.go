package camera

import (
	"math"

	"VoxelForge/shared/config"
	"VoxelForge/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Controller é uma câmera orbital com movimento suavizado em torno de um alvo.
type Controller struct {
	RLCamera rl.Camera3D

	MinZoom      float32
	MaxZoom      float32
	MoveSpeed    float32
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave)

	// Estado alvo
	TargetLookAt mgl32.Vec3
	TargetZoom   float32
	AngleY       float32 // azimute (radianos)
	AngleX       float32 // elevação (radianos, negativa olhando para baixo)

	// Estado interpolado
	CurrentLookAt mgl32.Vec3
	CurrentZoom   float32
}

// New cria a câmera a partir da seção camera da configuração.
func New(cfg config.Camera) *Controller {
	c := &Controller{
		MinZoom:      2.0,
		MaxZoom:      400.0,
		MoveSpeed:    cfg.Speed * 5,
		RotateSpeed:  cfg.Sensitivity * 6,
		ZoomSpeed:    cfg.ZoomSpeed,
		SmoothFactor: 0.15,
		TargetZoom:   50.0,
		AngleY:       45.0 * rl.Deg2rad,
		AngleX:       -35.0 * rl.Deg2rad,
	}
	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       cfg.FOV,
		Projection: rl.CameraPerspective,
	}
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom
	c.apply()
	return c
}

// Frame enquadra a caixa [min, max] imediatamente (sem suavização).
func (c *Controller) Frame(min, max mgl32.Vec3) {
	c.TargetLookAt = min.Add(max).Mul(0.5)
	c.TargetZoom = clamp(max.Sub(min).Len()*1.1, c.MinZoom, c.MaxZoom)
	c.CurrentLookAt = c.TargetLookAt
	c.CurrentZoom = c.TargetZoom
	c.apply()
}

// Update interpola o estado atual em direção ao alvo. Chamado a cada frame.
func (c *Controller) Update(dt float32) {
	factor := c.SmoothFactor * 60.0 * dt // Normaliza para 60 FPS
	if factor > 1.0 {
		factor = 1.0
	}
	c.CurrentLookAt = c.CurrentLookAt.Add(c.TargetLookAt.Sub(c.CurrentLookAt).Mul(factor))
	c.CurrentZoom = util.Lerp(c.CurrentZoom, c.TargetZoom, factor)
	c.apply()
}

// Position devolve a posição atual da câmera no mundo.
func (c *Controller) Position() mgl32.Vec3 {
	p := c.RLCamera.Position
	return mgl32.Vec3{p.X, p.Y, p.Z}
}

// Forward devolve a direção de visão normalizada.
func (c *Controller) Forward() mgl32.Vec3 {
	return c.CurrentLookAt.Sub(c.Position()).Normalize()
}

// apply recalcula a posição a partir dos ângulos e do zoom atuais.
func (c *Controller) apply() {
	cosX := float32(math.Cos(float64(c.AngleX)))
	sinX := float32(math.Sin(float64(c.AngleX)))
	cosY := float32(math.Cos(float64(c.AngleY)))
	sinY := float32(math.Sin(float64(c.AngleY)))

	offset := mgl32.Vec3{
		c.CurrentZoom * cosX * sinY,
		c.CurrentZoom * -sinX, // Y é UP no Raylib
		c.CurrentZoom * cosX * cosY,
	}
	pos := c.CurrentLookAt.Add(offset)

	c.RLCamera.Position = rl.Vector3{X: pos.X(), Y: pos.Y(), Z: pos.Z()}
	c.RLCamera.Target = rl.Vector3{X: c.CurrentLookAt.X(), Y: c.CurrentLookAt.Y(), Z: c.CurrentLookAt.Z()}
}

// HandleInput processa zoom (roda), órbita (botão direito) e WASD.
// Retorna true se houve movimento.
func (c *Controller) HandleInput(dt float32) bool {
	moved := false

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		moved = true
		c.TargetZoom = clamp(c.TargetZoom-wheel*c.ZoomSpeed, c.MinZoom, c.MaxZoom)
	}

	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		if delta.X != 0 || delta.Y != 0 {
			moved = true
		}
		c.AngleY -= delta.X * c.RotateSpeed * 0.005
		c.AngleX -= delta.Y * c.RotateSpeed * 0.005
		// Entre -89 graus (topo) e -5 graus (horizonte)
		c.AngleX = clamp(c.AngleX, -89.0*rl.Deg2rad, -5.0*rl.Deg2rad)
	}

	// Vetores forward e right projetados no plano XZ
	forward := c.TargetLookAt.Sub(c.Position())
	forward[1] = 0
	if forward.Len() == 0 {
		return moved
	}
	forward = forward.Normalize()
	right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()

	move := mgl32.Vec3{}
	if rl.IsKeyDown(rl.KeyW) {
		move = move.Add(forward)
	}
	if rl.IsKeyDown(rl.KeyS) {
		move = move.Sub(forward)
	}
	if rl.IsKeyDown(rl.KeyD) {
		move = move.Add(right)
	}
	if rl.IsKeyDown(rl.KeyA) {
		move = move.Sub(right)
	}
	if rl.IsKeyDown(rl.KeyE) {
		move[1] += 1
	}
	if rl.IsKeyDown(rl.KeyQ) {
		move[1] -= 1
	}

	if move.Len() > 0 {
		// Quanto mais longe, mais rápido
		speed := c.MoveSpeed * (c.CurrentZoom / 50.0) * dt
		c.TargetLookAt = c.TargetLookAt.Add(move.Normalize().Mul(speed))
		moved = true
	}
	return moved
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
