package refresh

import (
	"os"

	"artifactd/internal/artifacts"
	"artifactd/internal/providers"
	"artifactd/internal/refresh/interfaces"
	"artifactd/internal/services"

	json "github.com/goccy/go-json"
)

// FileManager persists the last-good dataset snapshot to disk,
// zstd-compressed, and restores it on boot. The snapshot sits between
// "stale in-memory cache" and "hardcoded fallback" in the degradation
// order: a restarted process serves real data while upstream is down.
type FileManager struct {
	service    services.ArtifactServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.ArtifactServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snap := f.service.Snapshot()
	if snap == nil {
		return nil
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return err
	}

	var snap artifacts.Snapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot file %s is unreadable, ignoring it", fileName)
		return nil
	}

	f.service.Restore(&snap)
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}
