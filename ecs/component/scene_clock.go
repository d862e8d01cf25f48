package component

// SceneClock is the per-frame tick shared by time driven systems.
type SceneClock struct {
	Delta   float64
	Elapsed float64
	Frame   uint64
	Paused  bool
}

var SceneClockComponent = NewComponent[SceneClock]()
