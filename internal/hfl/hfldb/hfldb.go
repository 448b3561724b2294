// Package hfldb persists decoded sensor records to a local sqlite database:
// telemetry history, object-list snapshots and per-frame summary rows. Full
// depth images are not stored; the database is for trend inspection, not
// replay.
package hfldb

import (
	"database/sql"
	_ "embed"
	"log"
	"math"
	"time"

	hfl "github.com/banshee-data/hfl110.report/internal/hfl"

	_ "modernc.org/sqlite"
)

type HFLDB struct {
	*sql.DB
}

// schema.sql contains the SQL statements for creating the database schema:
// tables for telemetry records, object-list snapshots and frame summaries.
//
//go:embed schema.sql
var schemaSQL string

func NewHFLDB(path string) (*HFLDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(schemaSQL)
	if err != nil {
		return nil, err
	}

	log.Println("initialized hfl database schema")

	return &HFLDB{db}, nil
}

// InsertTelemetry persists one telemetry record and returns its row id.
func (hdb *HFLDB) InsertTelemetry(rec *hfl.TelemetryRecord, at time.Time) (int64, error) {
	if rec == nil {
		return 0, nil
	}
	stmt := `INSERT INTO hfl_telemetry (recorded_unix_nanos, hardware_revision, sensor_temp_c, heater_temp_c, frame_counter,
				adc_voltage_0, adc_voltage_1, adc_voltage_2, adc_voltage_3, adc_voltage_4,
				acquisition_period_s, heater_feedback, serial_number)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := hdb.Exec(stmt, at.UnixNano(), rec.HardwareRevision, rec.SensorTemp, rec.HeaterTemp, rec.FrameCounter,
		rec.ADCUbattSW, rec.ADCUbatt, rec.ADCHeaterLens, rec.ADCHeaterLensHigh, rec.ADCTemp0Lens,
		rec.AcquisitionPeriod, rec.TempSensorFeedback, rec.Serial())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertObjectList persists one completed object-list snapshot and returns
// the new list_id. The insert is transactional: either the list row and all
// object rows land, or none do.
func (hdb *HFLDB) InsertObjectList(objects []hfl.TrackedObject, at time.Time) (int64, error) {
	tx, err := hdb.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO hfl_object_list (recorded_unix_nanos, object_count) VALUES (?, ?)`,
		at.UnixNano(), len(objects))
	if err != nil {
		return 0, err
	}
	listID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO hfl_object (list_id, dist_x, dist_y, height, yaw, vabs_x, vabs_y,
				motion_state, dynamic_property, quality, classification, class_confidence)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, o := range objects {
		_, err = stmt.Exec(listID, o.Geometry.DistX, o.Geometry.DistY, o.Geometry.Height, o.Geometry.Yaw,
			o.Kinematics.VabsX, o.Kinematics.VabsY,
			o.State, o.DynamicProps, o.Quality, o.Class, o.Confidence)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return listID, nil
}

// InsertFrameSummary persists the summary row for one reassembled frame.
// Counts and range extremes cover the first return only, matching how the
// sensor reports frame quality. Range extremes are NULL when every pixel in
// the frame was saturated.
func (hdb *HFLDB) InsertFrameSummary(f *hfl.Frame) (int64, error) {
	if f == nil {
		return 0, nil
	}

	saturated := 0
	crosstalk := 0
	nanCount := 0
	var minRange, maxRange sql.NullFloat64
	for row := 0; row < hfl.FRAME_ROWS; row++ {
		for col := 0; col < hfl.FRAME_COLUMNS; col++ {
			if f.Saturated[row][col] {
				saturated++
			}
			if f.Crosstalk[row][col] {
				crosstalk++
			}
			r := float64(f.Depth[row][col])
			if math.IsNaN(r) {
				nanCount++
				continue
			}
			if !minRange.Valid || r < minRange.Float64 {
				minRange = sql.NullFloat64{Float64: r, Valid: true}
			}
			if !maxRange.Valid || r > maxRange.Float64 {
				maxRange = sql.NullFloat64{Float64: r, Valid: true}
			}
		}
	}

	stmt := `INSERT INTO hfl_frame_summary (frame_id, frame_number, recorded_unix_nanos, point_count, nan_count, min_range_m, max_range_m, saturated_count, crosstalk_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := hdb.Exec(stmt, f.FrameID, f.FrameNumber, f.Timestamp.UnixNano(), len(f.Points), nanCount, minRange, maxRange, saturated, crosstalk)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// TelemetrySample is one row from the telemetry history.
type TelemetrySample struct {
	RecordedUnixNanos int64
	SensorTemp        float64
	HeaterTemp        float64
	FrameCounter      int64
	SerialNumber      string
}

// RecentTelemetry returns up to limit telemetry samples, newest first.
func (hdb *HFLDB) RecentTelemetry(limit int) ([]TelemetrySample, error) {
	rows, err := hdb.Query(`SELECT recorded_unix_nanos, sensor_temp_c, heater_temp_c, frame_counter, serial_number
			 FROM hfl_telemetry ORDER BY recorded_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []TelemetrySample
	for rows.Next() {
		var s TelemetrySample
		if err := rows.Scan(&s.RecordedUnixNanos, &s.SensorTemp, &s.HeaterTemp, &s.FrameCounter, &s.SerialNumber); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}
