// Package station models the Environment Agency's flood-monitoring sensor
// network: water-level monitoring stations and rainfall gauges.
//
// # Data Source
//
// Station and gauge records originate from the EA real-time flood-monitoring
// API, https://environment.data.gov.uk/flood-monitoring/doc/reference. There
// are over 2000 level stations across England recording water levels on
// rivers, coastal sites and aquifers, and over 1000 tipping-bucket rain
// gauges recording precipitation in millimetres.
//
// # Conventions
//
// Coordinates are WGS-84 (latitude, longitude) in decimal degrees, available
// to 6 decimal places (< 10 cm resolution in England). Some records omit
// them entirely.
//
// The typical range is the [low, high] metres interval within which the
// middle 90% of recorded levels lies, roughly ±1.64 standard deviations
// about the mean. It can be assumed constant over time, though feed data is
// occasionally missing, inverted or degenerate; such stations are
// "inconsistent" and are excluded from relative-level computation.
//
// Tidal and groundwater stations measure levels relative to the ordnance
// datum (mOAD) rather than an absolute depth, so tidal readings legitimately
// go negative.
//
// Stations record at 15-minute intervals on the quarter hour. Rain gauges
// typically report once or twice a day; the gauge Period field carries the
// interval between successive readings in seconds, usually 900.
package station
