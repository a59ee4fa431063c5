package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SiteInfo{},
	&AnalysisRun{},
	&FacadeExposure{},
	&MassingReport{},
}

// SiteInfo describes an analysis site. One row per site, reused across
// sessions at the same location.
type SiteInfo struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
}

// AnalysisRun is one persisted shadow analysis result. The cell raster and
// warnings are stored as JSON documents rather than relational rows: they
// are written once and always read back whole.
type AnalysisRun struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	SessionID     string         `json:"sessionId" gorm:"index"`
	Mode          string         `json:"mode"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	CellSize      float64        `json:"cellSize"`
	GridWidth     int            `json:"gridWidth"`
	GridHeight    int            `json:"gridHeight"`
	PercentShaded float64        `json:"percentShaded"`
	SunTime       sql.NullTime   `json:"sunTime"`
	TotalCells    int            `json:"totalCells"`
	ShadedCells   int            `json:"shadedCells"`
	LitCells      int            `json:"litCells"`
	Cells         datatypes.JSON `json:"cells"`
	Warnings      datatypes.JSON `json:"warnings"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// FacadeExposure is one building's cardinal facade sun hours within a session.
type FacadeExposure struct {
	ID         uint    `json:"id" gorm:"primarykey"`
	SessionID  string  `json:"sessionId" gorm:"index"`
	BuildingID string  `json:"buildingId"`
	NorthHours float64 `json:"northHours"`
	EastHours  float64 `json:"eastHours"`
	SouthHours float64 `json:"southHours"`
	WestHours  float64 `json:"westHours"`
}

// MassingReport is the persisted validation report of a massing extraction pass.
type MassingReport struct {
	ID              uint           `json:"id" gorm:"primarykey"`
	SessionID       string         `json:"sessionId" gorm:"index"`
	Total           int            `json:"total"`
	DefaultedHeight int            `json:"defaultedHeight"`
	AverageHeightM  float64        `json:"averageHeightM"`
	MaxHeightM      float64        `json:"maxHeightM"`
	VerifyIDs       datatypes.JSON `json:"verifyIds"`
	Warnings        datatypes.JSON `json:"warnings"`
	CreatedAt       time.Time      `json:"createdAt"`
}
