// Package config defines the driftd configuration: which API to sample,
// how hard the throttle may push it, what to explore, and where results
// land.
//
// Configuration is layered. Load reads a YAML or JSON file and overlays
// it onto Default, so a file only needs the fields it changes. ApplyEnv
// then overlays the DRIFTD_API_URL and DRIFTD_API_TOKEN environment
// variables, which always win over file values. Validate catches
// anything that would otherwise fail mid-sweep.
//
//	cfg, err := config.Load("driftd.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg.ApplyEnv()
//
// The exploration filter is an expression over the endpoint variables
// path, method, operation_id, and namespace:
//
//	filter: 'method == "GET" && namespace != "legacy"'
package config
