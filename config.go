// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sindlinger/fpdf-portable-sub002/logger"
)

type ParsingMode string

const (
	Strict     ParsingMode = "strict"
	BestEffort ParsingMode = "best-effort"
)

type Config struct {
	MaxConcurrentPDFs int           `validate:"min=1,max=10"`
	MaxWorkersPerPDF  int           `validate:"min=1,max=10"`
	WorkerTimeout     time.Duration `validate:"required"`
	ParsingMode       ParsingMode   `validate:"oneof=strict best-effort"`
	MaxRetries        int           `validate:"min=0,max=3"`
	MaxTotalChars     int           `validate:"min=0"`
	DebugOn           bool
	Logger            logger.LogFunc
	// Metrics           MetricsInterface

	// RebuildOnXrefFailure is a flag for cross-reference failure handling.
	// Nothing in this module reads it: there is no linear object-scan
	// rebuild, and a cross-reference table or stream that cannot be parsed
	// makes NewReader return an error.
	RebuildOnXrefFailure bool
	// CacheDBPath is the SQLite database file for the cache store (C7);
	// NewDefaultConfig sets it to data/sqlite/sqlite-mcp.db. Nothing in this
	// module reads it: store.Open takes its path as an argument and has no
	// default path of its own.
	CacheDBPath string
	// AllowedDirs mirrors FPDF_ALLOWED_DIRS: directories the CLI layer may
	// read PDFs from or write the cache database under. This library never
	// reads the environment itself; the CLI layer populates this field.
	AllowedDirs []string
	// QueryResultCap is a row cap for range queries (C8). Nothing in this
	// module reads it: query.Engine.Run takes its own limit argument.
	QueryResultCap int `validate:"min=0"`
	// FuzzyNormalization is a flag for fuzzy term predicates (C8). Nothing
	// in this module reads it: fuzzy terms always fold both accents and case.
	FuzzyNormalization bool
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentPDFs:    5,
		MaxWorkersPerPDF:     1,
		WorkerTimeout:        5 * time.Second,
		ParsingMode:          BestEffort,
		MaxRetries:           3,
		MaxTotalChars:        0,
		DebugOn:              false,
		RebuildOnXrefFailure: true,
		CacheDBPath:          "data/sqlite/sqlite-mcp.db",
		QueryResultCap:       1000,
		FuzzyNormalization:   true,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}
