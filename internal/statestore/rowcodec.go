package statestore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const selectColumns = `SELECT
    item_id, source, concept_text, status, failed_stage, retry_after,
    stage_attempts_json, script_path, narration_path, stock_clip_paths_json,
    assembled_video_path, captioned_video_path, metadata_json_path,
    title, description, tags_json, publication_url, last_error_json,
    fingerprint, created_at, updated_at, last_heartbeat
FROM items`

type itemRow struct {
	itemID              string
	source              string
	conceptText         string
	status              string
	failedStage         string
	retryAfter          sql.NullString
	stageAttemptsJSON   string
	scriptPath          string
	narrationPath       string
	stockClipPathsJSON  string
	assembledVideoPath  string
	captionedVideoPath  string
	metadataJSONPath    string
	title               string
	description         string
	tagsJSON            string
	publicationURL      string
	lastErrorJSON       sql.NullString
	fingerprint         string
	createdAt           string
	updatedAt           string
	lastHeartbeat       sql.NullString
}

func marshalItem(item *Item) (itemRow, error) {
	attemptsJSON, err := json.Marshal(item.StageAttempts)
	if err != nil {
		return itemRow{}, fmt.Errorf("marshal stage attempts: %w", err)
	}
	clipsJSON, err := json.Marshal(item.StockClipPaths)
	if err != nil {
		return itemRow{}, fmt.Errorf("marshal stock clip paths: %w", err)
	}
	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return itemRow{}, fmt.Errorf("marshal tags: %w", err)
	}

	var lastErrorJSON sql.NullString
	if item.LastError != nil {
		data, err := json.Marshal(item.LastError)
		if err != nil {
			return itemRow{}, fmt.Errorf("marshal last error: %w", err)
		}
		lastErrorJSON = sql.NullString{String: string(data), Valid: true}
	}

	var retryAfter sql.NullString
	if item.RetryAfter != nil {
		retryAfter = sql.NullString{String: item.RetryAfter.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	var lastHeartbeat sql.NullString
	if item.LastHeartbeat != nil {
		lastHeartbeat = sql.NullString{String: item.LastHeartbeat.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	return itemRow{
		itemID:             item.ItemID,
		source:             string(item.Source),
		conceptText:        item.ConceptText,
		status:             string(item.Status),
		failedStage:        item.FailedStage,
		retryAfter:         retryAfter,
		stageAttemptsJSON:  string(attemptsJSON),
		scriptPath:         item.ScriptPath,
		narrationPath:      item.NarrationPath,
		stockClipPathsJSON: string(clipsJSON),
		assembledVideoPath: item.AssembledVideoPath,
		captionedVideoPath: item.CaptionedVideoPath,
		metadataJSONPath:   item.MetadataJSONPath,
		title:              item.Title,
		description:        item.Description,
		tagsJSON:           string(tagsJSON),
		publicationURL:     item.PublicationURL,
		lastErrorJSON:      lastErrorJSON,
		fingerprint:        item.Fingerprint,
		createdAt:          item.CreatedAt.UTC().Format(time.RFC3339Nano),
		updatedAt:          item.UpdatedAt.UTC().Format(time.RFC3339Nano),
		lastHeartbeat:      lastHeartbeat,
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var row itemRow
	if err := scanner.Scan(
		&row.itemID, &row.source, &row.conceptText, &row.status, &row.failedStage, &row.retryAfter,
		&row.stageAttemptsJSON, &row.scriptPath, &row.narrationPath, &row.stockClipPathsJSON,
		&row.assembledVideoPath, &row.captionedVideoPath, &row.metadataJSONPath,
		&row.title, &row.description, &row.tagsJSON, &row.publicationURL, &row.lastErrorJSON,
		&row.fingerprint, &row.createdAt, &row.updatedAt, &row.lastHeartbeat,
	); err != nil {
		return nil, err
	}
	return unmarshalItem(row)
}

func scanItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func unmarshalItem(row itemRow) (*Item, error) {
	item := &Item{
		ItemID:             row.itemID,
		Source:             Source(row.source),
		ConceptText:        row.conceptText,
		Status:             Status(row.status),
		FailedStage:        row.failedStage,
		ScriptPath:         row.scriptPath,
		NarrationPath:      row.narrationPath,
		AssembledVideoPath: row.assembledVideoPath,
		CaptionedVideoPath: row.captionedVideoPath,
		MetadataJSONPath:   row.metadataJSONPath,
		Title:              row.title,
		Description:        row.description,
		PublicationURL:     row.publicationURL,
		Fingerprint:        row.fingerprint,
	}

	if err := json.Unmarshal([]byte(row.stageAttemptsJSON), &item.StageAttempts); err != nil {
		return nil, fmt.Errorf("unmarshal stage attempts: %w", err)
	}
	if err := json.Unmarshal([]byte(row.stockClipPathsJSON), &item.StockClipPaths); err != nil {
		return nil, fmt.Errorf("unmarshal stock clip paths: %w", err)
	}
	if err := json.Unmarshal([]byte(row.tagsJSON), &item.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}

	if row.lastErrorJSON.Valid {
		var stageErr StageError
		if err := json.Unmarshal([]byte(row.lastErrorJSON.String), &stageErr); err != nil {
			return nil, fmt.Errorf("unmarshal last error: %w", err)
		}
		item.LastError = &stageErr
	}

	if row.retryAfter.Valid {
		t, err := time.Parse(time.RFC3339Nano, row.retryAfter.String)
		if err != nil {
			return nil, fmt.Errorf("parse retry_after: %w", err)
		}
		item.RetryAfter = &t
	}
	if row.lastHeartbeat.Valid {
		t, err := time.Parse(time.RFC3339Nano, row.lastHeartbeat.String)
		if err != nil {
			return nil, fmt.Errorf("parse last_heartbeat: %w", err)
		}
		item.LastHeartbeat = &t
	}

	createdAt, err := time.Parse(time.RFC3339Nano, row.createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	item.CreatedAt = createdAt

	updatedAt, err := time.Parse(time.RFC3339Nano, row.updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	item.UpdatedAt = updatedAt

	return item, nil
}
