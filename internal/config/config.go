package config

type Config struct {
	BlueprintPath  string
	AudioPath      string
	MusicPath      string
	MusicVolume    float64
	StoryboardPath string
	OutputVideo    string
	Width          int
	Height         int
	FPS            int
	DPI            int
	ProductURL     string
	FontPath       string
	CacheDir       string
}
