package game

import (
	"math/rand/v2"
	"time"
)

// RandomSource: источник случайности для генератора раундов и политики соперника.
// *rand.Rand из math/rand/v2 удовлетворяет интерфейсу; в тестах используется сид.
type RandomSource interface {
	IntN(n int) int
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// NewSeededSource возвращает воспроизводимый источник. Не потокобезопасен.
func NewSeededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// globalSource использует потокобезопасные функции пакета math/rand/v2.
type globalSource struct{}

// DefaultSource возвращает источник, безопасный для одновременных сессий.
func DefaultSource() RandomSource {
	return globalSource{}
}

func (globalSource) IntN(n int) int                     { return rand.IntN(n) }
func (globalSource) Float64() float64                   { return rand.Float64() }
func (globalSource) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Clock изолирует время, чтобы время реакции можно было проверять в тестах.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock возвращает часы на основе time.Now.
func SystemClock() Clock {
	return systemClock{}
}
