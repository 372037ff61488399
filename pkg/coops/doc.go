// Package coops implements queries to the NOAA CO-OPS tides and currents API.
// Data is requested per station for a window of time (see Query). Tide
// predictions come back as a list of high/low extrema with time, height, and
// type; observation products (water level, temperatures) come back as
// timestamped values.
package coops
