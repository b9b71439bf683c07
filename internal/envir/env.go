// Copyright 2025 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package envir

const (
	NPSDebug         = "NPS_DEBUG"
	NPSFeaturePrefix = "NPS_FEATURE_"
	NPSFeaturesFile  = "NPS_FEATURES_FILE"
	NPSPrintExecTime = "NPS_PRINT_EXEC_TIME"
	NPSProd          = "NPS_PROD"
	NPSSessionFile   = "NPS_SESSION_FILE"

	XDGConfigHome = "XDG_CONFIG_HOME"
	XDGStateHome  = "XDG_STATE_HOME"
)

const Home = "HOME"
