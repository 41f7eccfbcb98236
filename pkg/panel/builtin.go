package panel

import "net/http"

// Built-in panel ids.
const (
	System      = "system"
	Agriculture = "agri"
	Stability   = "stability"
	Facilities  = "facilities"
	Simulation  = "simulation"
	Meteo       = "meteo"
	Terrain     = "terrain"
)

// AgriSampleGeometry is the closed demonstration polygon used by the
// agriculture sample.
const AgriSampleGeometry = `{"type":"Polygon","coordinates":[[[73.1001,19.0402],[73.1123,19.0402],[73.1123,19.0511],[73.1001,19.0511],[73.1001,19.0402]]]}`

// SimulationSampleConditions seeds the meteorological override of the
// simulation sample.
const SimulationSampleConditions = `{"wind_speed_ms":4.2,"wind_direction_deg":270,"temperature_c":31.5,"stability_class":"D"}`

var latLonFields = []Field{
	{Name: "lat", Label: "Latitude", Kind: KindNumber},
	{Name: "lon", Label: "Longitude", Kind: KindNumber},
}

func builtinPanels() []Panel {
	return []Panel{
		{
			ID:          System,
			Title:       "Backend status",
			Description: "Connectivity check against the analysis backend.",
			Actions: []Action{
				{ID: "health", Label: "Check health", Method: http.MethodGet, Path: "/health"},
			},
		},
		{
			ID:          Agriculture,
			Title:       "Agriculture AOI analysis",
			Description: "Soil nutrient analysis for an area of interest.",
			Fields: []Field{
				{Name: "aoi_name", Label: "AOI name"},
				{Name: "crop_type", Label: "Crop type", Default: "Unknown"},
				{Name: "start_date", Label: "Start date", Help: "YYYY-MM-DD"},
				{Name: "end_date", Label: "End date", Help: "YYYY-MM-DD"},
				{Name: "geometry", Label: "Geometry (GeoJSON)", Kind: KindJSON},
				{Name: "task_id", Label: "Current task id"},
			},
			Actions: []Action{
				{
					ID:      "start",
					Label:   "Start analysis",
					Method:  http.MethodPost,
					Path:    "/api/analysis/agri/start",
					Fields:  []string{"aoi_name", "crop_type", "start_date", "end_date", "geometry"},
					Capture: &Capture{From: "task_id", Into: "task_id"},
				},
				{
					ID:       "results",
					Label:    "Get results",
					Method:   http.MethodGet,
					Path:     "/api/analysis/agri/results/{task_id}",
					Requires: "task_id",
				},
				{ID: "tasks", Label: "List tasks", Method: http.MethodGet, Path: "/api/analysis/agri/tasks"},
			},
			Sample: map[string]string{
				"aoi_name":   "Taloja North Block",
				"crop_type":  "Rice",
				"start_date": "2024-06-01",
				"end_date":   "2024-09-30",
				"geometry":   AgriSampleGeometry,
			},
		},
		{
			ID:          Stability,
			Title:       "Ground stability prediction",
			Description: "Displacement velocity and stability forecast for a coordinate.",
			Fields: []Field{
				{Name: "coordinate.latitude", Label: "Latitude", Kind: KindNumber},
				{Name: "coordinate.longitude", Label: "Longitude", Kind: KindNumber},
				{Name: "task_id", Label: "Current task id"},
			},
			Actions: []Action{
				{
					ID:      "start",
					Label:   "Start prediction",
					Method:  http.MethodPost,
					Path:    "/api/displacement/analysis/stability/predict/start",
					Fields:  []string{"coordinate.latitude", "coordinate.longitude"},
					Capture: &Capture{From: "task_id", Into: "task_id"},
				},
				{
					ID:       "results",
					Label:    "Get results",
					Method:   http.MethodGet,
					Path:     "/api/displacement/analysis/stability/predict/results/{task_id}",
					Requires: "task_id",
				},
				{ID: "tasks", Label: "List tasks", Method: http.MethodGet, Path: "/api/displacement/analysis/stability/predict/tasks"},
			},
			Sample: map[string]string{
				"coordinate.latitude":  "19.0760",
				"coordinate.longitude": "72.8777",
			},
		},
		{
			ID:          Facilities,
			Title:       "Industrial facilities",
			Description: "Search reporting facilities by location, sector and pollutant.",
			Fields: []Field{
				{Name: "country", Label: "Country"},
				{Name: "sector", Label: "Sector"},
				{Name: "pollutant", Label: "Pollutant"},
				{Name: "year", Label: "Reporting year", Kind: KindNumber},
				{Name: "limit", Label: "Limit", Kind: KindNumber, Default: "25"},
			},
			Actions: []Action{
				{
					ID:     "search",
					Label:  "Search",
					Method: http.MethodGet,
					Path:   "/api/facilities/search",
					Fields: []string{"country", "sector", "pollutant", "year", "limit"},
				},
			},
			Sample: map[string]string{
				"country":   "Spain",
				"sector":    "Energy",
				"pollutant": "Ammonia",
				"year":      "2021",
				"limit":     "10",
			},
		},
		{
			ID:          Simulation,
			Title:       "Calamity simulation",
			Prefix:      "sim",
			Description: "Run a disaster scenario against an industrial site and fetch its risk profile.",
			Fields: []Field{
				{Name: "site_id", Label: "Site id"},
				{Name: "calamity_type", Label: "Calamity type", Options: []string{"flood", "earthquake", "fire", "explosion"}},
				{Name: "magnitude", Label: "Magnitude", Kind: KindNumber},
				{Name: "unit", Label: "Unit"},
				{Name: "meteorological_conditions", Label: "Meteorological conditions (JSON)", Kind: KindJSON},
				{Name: "simulation_id", Label: "Current simulation id"},
				{Name: "status", Label: "Status filter"},
				{Name: "limit", Label: "List limit", Kind: KindNumber, Default: "50"},
			},
			Actions: []Action{
				{
					ID:      "start",
					Label:   "Start simulation",
					Method:  http.MethodPost,
					Path:    "/api/simulate/calamity",
					Fields:  []string{"site_id", "calamity_type", "magnitude", "unit", "meteorological_conditions"},
					Capture: &Capture{From: "simulation_id", Into: "simulation_id"},
				},
				{
					ID:       "risk-profile",
					Label:    "Get risk profile",
					Method:   http.MethodGet,
					Path:     "/api/simulate/risk-profile/{simulation_id}",
					Requires: "simulation_id",
				},
				{
					ID:       "status",
					Label:    "Get status",
					Method:   http.MethodGet,
					Path:     "/api/simulate/status/{simulation_id}",
					Requires: "simulation_id",
				},
				{
					ID:     "list",
					Label:  "List simulations",
					Method: http.MethodGet,
					Path:   "/api/simulate/list",
					Fields: []string{"status", "limit"},
				},
			},
			Sample: map[string]string{
				"site_id":                   "ind_site_taloja_44",
				"calamity_type":             "flood",
				"magnitude":                 "2.5",
				"unit":                      "meters_above_base",
				"meteorological_conditions": SimulationSampleConditions,
			},
		},
		{
			ID:          Meteo,
			Title:       "Meteorological conditions",
			Description: "Current weather, forecast and dispersion parameters for a coordinate.",
			Fields: append(append([]Field(nil), latLonFields...),
				Field{Name: "hours", Label: "Forecast hours", Kind: KindNumber, Default: "24"},
			),
			Actions: []Action{
				{ID: "current", Label: "Current weather", Method: http.MethodGet, Path: "/api/meteorological/current", Fields: []string{"lat", "lon"}},
				{ID: "forecast", Label: "Forecast", Method: http.MethodGet, Path: "/api/meteorological/forecast", Fields: []string{"lat", "lon", "hours"}},
				{ID: "dispersion", Label: "Dispersion parameters", Method: http.MethodGet, Path: "/api/meteorological/dispersion-params", Fields: []string{"lat", "lon"}},
			},
			Sample: map[string]string{
				"lat":   "19.0330",
				"lon":   "73.1010",
				"hours": "48",
			},
		},
		{
			ID:          Terrain,
			Title:       "Terrain",
			Description: "Elevation, slope, roughness and flow direction at a coordinate.",
			Fields:      append([]Field(nil), latLonFields...),
			Actions: []Action{
				{ID: "elevation", Label: "Elevation", Method: http.MethodGet, Path: "/api/terrain/elevation", Fields: []string{"lat", "lon"}},
				{ID: "slope", Label: "Slope", Method: http.MethodGet, Path: "/api/terrain/slope", Fields: []string{"lat", "lon"}},
				{ID: "roughness", Label: "Roughness", Method: http.MethodGet, Path: "/api/terrain/roughness", Fields: []string{"lat", "lon"}},
				{ID: "flow-direction", Label: "Flow direction", Method: http.MethodGet, Path: "/api/terrain/flow-direction", Fields: []string{"lat", "lon"}},
				{
					ID:     "summary",
					Label:  "Full summary",
					Method: http.MethodGet,
					Fields: []string{"lat", "lon"},
					Fanout: []Target{
						{Name: "elevation", Path: "/api/terrain/elevation"},
						{Name: "slope", Path: "/api/terrain/slope"},
						{Name: "roughness", Path: "/api/terrain/roughness"},
						{Name: "flow_direction", Path: "/api/terrain/flow-direction"},
					},
				},
			},
			Sample: map[string]string{
				"lat": "19.0415",
				"lon": "73.1062",
			},
		},
	}
}

// Default returns the built-in catalog covering every backend feature.
func Default() *Catalog {
	return MustCatalog(builtinPanels()...)
}
