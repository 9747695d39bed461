package controller

import (
	"math/rand/v2"
	"sync"
)

// Типы проверок Shield.
const (
	ScanVulnerability = "vulnerability"
	ScanCompliance    = "compliance"
)

// Sample — снимок состояния Shield.
type Sample struct {
	HealthScore float64
	ActiveScans map[string]int
}

// Source отдаёт текущее состояние Shield.
type Source interface {
	Sample() Sample
}

// SimulatedSource генерирует правдоподобные колебания состояния.
//
// Оценка: 95 + U[0,5) - U[0,2), т.е. в диапазоне (93, 100).
// Проверки: vulnerability 0..4, compliance 0..1.
type SimulatedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedSource создаёт источник с заданным seed.
func NewSimulatedSource(seed uint64) *SimulatedSource {
	return &SimulatedSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample генерирует новый снимок.
func (s *SimulatedSource) Sample() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Sample{
		HealthScore: 95.0 + s.rng.Float64()*5.0 - s.rng.Float64()*2.0,
		ActiveScans: map[string]int{
			ScanVulnerability: s.rng.IntN(5),
			ScanCompliance:    s.rng.IntN(2),
		},
	}
}
