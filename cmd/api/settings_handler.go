package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// RuntimeConfig holds runtime-configurable settings
type RuntimeConfig struct {
	AutoSyncEnabled bool `json:"auto_sync_enabled"`
}

var (
	runtimeConfig     RuntimeConfig
	runtimeConfigLock sync.RWMutex
)

// InitRuntimeConfig initializes runtime config from static config
func InitRuntimeConfig(autoSyncEnabled bool) {
	runtimeConfigLock.Lock()
	defer runtimeConfigLock.Unlock()
	runtimeConfig = RuntimeConfig{
		AutoSyncEnabled: autoSyncEnabled,
	}
}

// GetRuntimeAutoSyncEnabled reports whether the background scheduler should sync
func GetRuntimeAutoSyncEnabled() bool {
	runtimeConfigLock.RLock()
	defer runtimeConfigLock.RUnlock()
	return runtimeConfig.AutoSyncEnabled
}

// UpdateSyncSettingsRequest represents the request body for updating sync settings
type UpdateSyncSettingsRequest struct {
	AutoSyncEnabled *bool `json:"auto_sync_enabled" binding:"required"`
}

// GetSyncSettings returns the current sync configuration
// GET /api/settings/sync
func GetSyncSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"auto_sync_enabled": GetRuntimeAutoSyncEnabled(),
	})
}

// UpdateSyncSettings toggles background sync at runtime
// PUT /api/settings/sync
func UpdateSyncSettings(c *gin.Context) {
	var req UpdateSyncSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runtimeConfigLock.Lock()
	runtimeConfig.AutoSyncEnabled = *req.AutoSyncEnabled
	runtimeConfigLock.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":           "Sync settings updated successfully",
		"auto_sync_enabled": *req.AutoSyncEnabled,
	})
}
