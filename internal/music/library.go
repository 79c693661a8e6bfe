package music

import "strings"

// Библиотека фоновой музыки (классика, прямые MP3-ссылки Archive.org).
// Стандартные MP3, надежные и без лицензионных сюрпризов.
var library = map[string]string{
	// Satie - Gymnopedie No.1 (luxury/calm/classic)
	"luxury": "https://archive.org/download/ErikSatieGymnopedieNo1/Erik%20Satie%20-%20Gymnopedie%20No%201.mp3",

	// Beethoven - Moonlight Sonata (cinematic/serious)
	"cinematic": "https://archive.org/download/BeethovenMoonlightSonata_282/Beethoven-MoonlightSonata.mp3",

	// Chopin - Nocturne Op. 9 No. 2 (emotional/romantic)
	"emotional": "https://archive.org/download/ChopinNocturneOp.9No.2_685/Chopin-NocturneOp.9No.2.mp3",

	// Satie (same as luxury, works for chill)
	"chill": "https://archive.org/download/ErikSatieGymnopedieNo1/Erik%20Satie%20-%20Gymnopedie%20No%201.mp3",

	// Vivaldi - Spring (upbeat/bright)
	"upbeat": "https://archive.org/download/VivaldiTheFourSeasons-Spring/01Spring-I.Allegro.mp3",

	// Mozart - Eine Kleine Nachtmusik (energetic)
	"energetic": "https://archive.org/download/MozartEineKleineNachtmusik_195/Mozart-EineKleineNachtmusik.mp3",
}

const fallback = "https://archive.org/download/ErikSatieGymnopedieNo1/Erik%20Satie%20-%20Gymnopedie%20No%201.mp3"

// SelectBackgroundMusic maps a free-text vibe description to an asset URL.
// Keyword matching is ordered: the first matching mood wins.
func SelectBackgroundMusic(vibe string) string {
	lower := strings.ToLower(vibe)

	anyOf := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}

	switch {
	case anyOf("luxury", "rich", "elegant", "fashion", "classic", "premium"):
		return library["luxury"]
	case anyOf("sad", "emotional", "story", "soft", "touching"):
		return library["emotional"]
	case anyOf("chill", "relax", "lofi", "study", "calm"):
		return library["chill"]
	case anyOf("epic", "movie", "dramatic", "trailer", "dark"):
		return library["cinematic"]
	case anyOf("rap", "hip hop", "gym", "drill", "fast", "energy"):
		return library["energetic"]
	case anyOf("happy", "fun", "upbeat", "joy", "bright"):
		return library["upbeat"]
	}

	return fallback
}
