package audio

import (
	"crypto/sha1"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var fetchClient = &http.Client{Timeout: 60 * time.Second}

// FetchRemote downloads a remote audio asset into cacheDir and returns the
// local path. The first attempt sends an Origin header the way a strict
// embedder would; if the server rejects that, one relaxed retry is made with a
// plain GET. A track obtained through the relaxed path still plays, but it is
// marked capture-restricted so the export mix leaves it out.
func FetchRemote(url, cacheDir string) (path string, restricted bool, err error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", false, err
	}

	name := fmt.Sprintf("%x%s", sha1.Sum([]byte(url)), extOf(url))
	path = filepath.Join(cacheDir, name)
	if _, statErr := os.Stat(path); statErr == nil {
		return path, false, nil
	}

	if err = download(url, path, true); err == nil {
		return path, false, nil
	}

	// Повторяем без строгих заголовков: трек будет играть, но в экспорт
	// его подмешивать нельзя.
	log.Printf("[!] Строгая загрузка музыки не удалась (%v), пробуем без ограничений...", err)
	if err = download(url, path, false); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func download(url, path string, strict bool) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if strict {
		req.Header.Set("Origin", "null")
		req.Header.Set("Sec-Fetch-Mode", "cors")
	}

	resp, err := fetchClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("загрузка %s: статус %s", url, resp.Status)
	}
	if strict {
		// Mirror the browser contract: without an allow-origin grant the
		// asset may be played but not captured.
		if allow := resp.Header.Get("Access-Control-Allow-Origin"); allow == "" {
			return fmt.Errorf("загрузка %s: нет Access-Control-Allow-Origin", url)
		}
	}

	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func extOf(url string) string {
	clean := url
	if i := strings.IndexAny(clean, "?#"); i >= 0 {
		clean = clean[:i]
	}
	if ext := filepath.Ext(clean); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".mp3"
}
