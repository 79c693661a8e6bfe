package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/blueprint/internal/audio"
	"github.com/ivlev/blueprint/internal/blueprint"
	"github.com/ivlev/blueprint/internal/compositor"
	"github.com/ivlev/blueprint/internal/config"
	"github.com/ivlev/blueprint/internal/export"
	"github.com/ivlev/blueprint/internal/media"
	"github.com/ivlev/blueprint/internal/music"
	"github.com/ivlev/blueprint/internal/playback"
	"github.com/ivlev/blueprint/internal/system"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/blueprints", "input/audio", "output", "cache/music"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	blueprintPtr := flag.String("blueprint", "", "Путь к YAML-блюпринту (по умолчанию: самый свежий файл в input/blueprints/)")
	audioPtr := flag.String("audio", "", "Путь к озвучке (по умолчанию: самый свежий файл в input/audio/)")
	musicPtr := flag.String("music", "", "Локальный файл фоновой музыки (если пусто, подбирается по вайбу блюпринта)")
	musicVolumePtr := flag.Float64("music-volume", 0.4, "Громкость музыки (0..1)")
	storyboardPtr := flag.String("storyboard", "", "PDF-раскадровка: страницы станут визуалами сцен")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	fpsPtr := flag.Int("fps", 60, "Частота захвата кадров")
	dpiPtr := flag.Int("dpi", 150, "DPI рендеринга раскадровки")
	productPtr := flag.String("product-url", "", "Ссылка на продукт для QR-кода в CTA")
	fontPtr := flag.String("font", "", "Путь к TTF-шрифту (по умолчанию: встроенный)")
	stillPtr := flag.Float64("still", -1, "Срендерить один кадр в момент t (сек) в PNG и выйти")
	previewPtr := flag.Float64("preview", 0, "Прокрутить превью N секунд перед экспортом")
	exportPtr := flag.Bool("export", true, "Экспортировать видео")

	flag.Parse()

	cfg := &config.Config{
		BlueprintPath:  *blueprintPtr,
		AudioPath:      *audioPtr,
		MusicPath:      *musicPtr,
		MusicVolume:    *musicVolumePtr,
		StoryboardPath: *storyboardPtr,
		OutputVideo:    *outputPtr,
		Width:          1080,
		Height:         1920,
		FPS:            *fpsPtr,
		DPI:            *dpiPtr,
		ProductURL:     *productPtr,
		FontPath:       *fontPtr,
		CacheDir:       "cache/music",
	}

	if cfg.BlueprintPath == "" {
		latest, err := system.FindLatestBlueprint("input/blueprints")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите блюпринт в input/blueprints/", err)
		}
		cfg.BlueprintPath = latest
		fmt.Printf("[*] Выбран блюпринт: %s\n", cfg.BlueprintPath)
	}

	prod, err := blueprint.ReadProduction(cfg.BlueprintPath)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения блюпринта: %v", err)
	}

	printSummary(prod)

	// Озвучка: ее реальная длительность становится длиной всего видео.
	narration := setupNarration(cfg)
	bgMusic := setupMusic(cfg, prod)

	store := media.NewStore()
	if cfg.StoryboardPath != "" {
		src, err := media.NewFitzStoryboardSource(cfg.StoryboardPath)
		if err != nil {
			log.Fatalf("[-] Ошибка открытия раскадровки: %v", err)
		}
		defer src.Close()
		if err := store.LoadStoryboard(src, prod.Scenes, cfg.DPI); err != nil {
			log.Fatalf("[-] Ошибка рендеринга раскадровки: %v", err)
		}
		fmt.Printf("[*] Раскадровка загружена: %s (%d страниц)\n", cfg.StoryboardPath, src.PageCount())
	}
	if err := store.Prefetch(context.Background(), prod.Scenes); err != nil {
		log.Printf("[!] Предзагрузка медиа прервана: %v", err)
	}

	comp, err := compositor.New(cfg.Width, cfg.Height, store, cfg.ProductURL, cfg.FontPath)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации композитора: %v", err)
	}

	clock := playback.NewClock(prod, comp, narration, bgMusic, playback.NullSink{}, cfg.FPS)
	defer clock.Close()
	clock.SetMusicVolume(cfg.MusicVolume)

	fmt.Println("--- [BLUEPRINT: TIMELINE COMPOSITOR] ---")
	fmt.Printf("[*] Сцен: %d | Длительность: %.2fs | %dx%d @ %d FPS\n",
		len(prod.Scenes), clock.State().TotalDuration, cfg.Width, cfg.Height, cfg.FPS)
	fmt.Println("----------------------------------------")

	if *stillPtr >= 0 {
		if err := renderStill(clock, *stillPtr); err != nil {
			log.Fatalf("[-] Ошибка рендеринга кадра: %v", err)
		}
		return
	}

	if *previewPtr > 0 {
		runPreview(clock, *previewPtr)
	}

	if !*exportPtr {
		return
	}

	if cfg.OutputVideo == "" {
		base := strings.TrimSuffix(filepath.Base(cfg.BlueprintPath), filepath.Ext(cfg.BlueprintPath))
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", base, timestamp))
	}

	pipeline := &export.Pipeline{
		Clock:      clock,
		Comp:       comp,
		Prod:       prod,
		Narration:  narration,
		Music:      bgMusic,
		FPS:        cfg.FPS,
		OutputPath: cfg.OutputVideo,
	}

	path, err := pipeline.Export(context.Background())
	if err != nil {
		log.Fatalf("[-] Ошибка экспорта: %v", err)
	}

	if warn := clock.State().LastAudioWarning; warn != "" {
		fmt.Printf("[!] %s\n", warn)
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", path)
}

func setupNarration(cfg *config.Config) *audio.Track {
	path := cfg.AudioPath
	if path == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err != nil {
			log.Printf("[!] Озвучка не найдена: превью пойдет по сумме весов сцен, экспорт недоступен")
			return nil
		}
		path = latest
		fmt.Printf("[*] Выбрана озвучка: %s\n", path)
	}

	track := audio.NewTrack(path)
	if err := track.Probe(); err != nil {
		// Ошибка озвучки не блокирует визуальное превью.
		log.Printf("[!] Не удалось получить длительность озвучки: %v", err)
	} else {
		fmt.Printf("[*] Длительность видео установлена по озвучке: %.2fs\n", track.Duration())
	}
	return track
}

func setupMusic(cfg *config.Config, prod *blueprint.Production) *audio.Track {
	if cfg.MusicPath != "" {
		track := audio.NewTrack(cfg.MusicPath)
		track.Loop = true
		if err := track.Probe(); err != nil {
			log.Printf("[!] Не удалось прочитать музыку %s: %v", cfg.MusicPath, err)
			return nil
		}
		return track
	}

	url := music.SelectBackgroundMusic(prod.MusicVibe)
	fmt.Printf("[*] Музыка по вайбу %q: %s\n", prod.MusicVibe, url)

	path, restricted, err := audio.FetchRemote(url, cfg.CacheDir)
	if err != nil {
		log.Printf("[!] Не удалось загрузить музыку: %v. Продолжаем без нее", err)
		return nil
	}

	track := audio.NewTrack(path)
	track.Loop = true
	track.CaptureRestricted = restricted
	if err := track.Probe(); err != nil {
		log.Printf("[!] Музыка загружена, но не читается: %v", err)
		return nil
	}
	return track
}

func printSummary(prod *blueprint.Production) {
	fmt.Println("--- [SOCIAL KIT] ---")
	for i, caption := range prod.Captions {
		fmt.Printf("[*] Кэпшен %d: %s\n", i+1, caption)
	}
	if len(prod.Hashtags) > 0 {
		tags := make([]string, len(prod.Hashtags))
		for i, t := range prod.Hashtags {
			tags[i] = "#" + t
		}
		fmt.Printf("[*] Хэштеги: %s\n", strings.Join(tags, " "))
	}
	fmt.Println("--- [SHOOTING GUIDE] ---")
	for i, s := range prod.Scenes {
		kind := "AI Hook / Visual"
		if s.Kind == blueprint.KindPlaceholder {
			kind = "Filming Required"
		}
		fmt.Printf("[*] Сцена %d (%.1fs, %s): %s\n", i+1, s.TargetDuration, kind, s.VisualDirection)
	}
}

// pngSink writes the next pushed frame to a PNG file.
type pngSink struct {
	path string
}

func (s *pngSink) PushFrame(img *image.RGBA) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func renderStill(clock *playback.Clock, t float64) error {
	out := filepath.Join("output", fmt.Sprintf("still_%.2fs.png", t))
	if err := clock.SeekInto(t, &pngSink{path: out}); err != nil {
		return err
	}
	fmt.Printf("[+++] Кадр сохранен: %s\n", out)
	return nil
}

func runPreview(clock *playback.Clock, seconds float64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(seconds*float64(time.Second)))
	defer cancel()

	clock.Play()
	if err := clock.Run(ctx); err != nil && err != context.DeadlineExceeded {
		log.Printf("[!] Превью остановлено: %v", err)
	}
	clock.Pause()
	st := clock.State()
	fmt.Printf("[*] Превью: t=%.2fs, сцена %d\n", st.CurrentTime, st.ActiveSceneIndex+1)
}
