package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// ReportMemory prints the memory preflight before export: frame buffers at
// the target resolution are large and a starved machine produces a stalled
// encode rather than an error.
func ReportMemory(width, height int) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Printf("[!] Не удалось получить состояние памяти: %v", err)
		return
	}

	frameBytes := uint64(width * height * 4)
	fmt.Printf("[*] Память: доступно %d МБ | кадр %dx%d занимает %.1f МБ\n",
		vm.Available/1024/1024, width, height, float64(frameBytes)/1024/1024)

	if vm.Available < frameBytes*64 {
		log.Printf("[!] Мало свободной памяти: экспорт может идти медленно")
	}
}

func findLatestWithExt(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		matched := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено подходящих файлов", dir)
	}

	return latestFile, nil
}

// FindLatestBlueprint returns the most recent blueprint YAML in dir.
func FindLatestBlueprint(dir string) (string, error) {
	return findLatestWithExt(dir, []string{".yaml", ".yml"})
}

// FindLatestAudio returns the most recent audio file in dir.
func FindLatestAudio(dir string) (string, error) {
	return findLatestWithExt(dir, []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"})
}

// FindLatestStoryboard returns the most recent PDF storyboard in dir.
func FindLatestStoryboard(dir string) (string, error) {
	return findLatestWithExt(dir, []string{".pdf"})
}

func GetBestH264Encoder() (string, string) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)

	encoders := []struct {
		name string
		args string
	}{
		{"h264_videotoolbox", ""},
		{"h264_nvenc", ""},
	}

	for _, enc := range encoders {
		cmd := exec.Command("ffmpeg", "-encoders")
		out, err := cmd.CombinedOutput()
		if err == nil && strings.Contains(string(out), enc.name) {
			return enc.name, enc.args
		}
	}

	return "libx264", ""
}
