// Package domain models earthquake catalog data retrieved from FDSN event
// web services (GeoNet by default).
//
// # Data Source
//
// Catalogs come from the FDSN event service at
// https://service.geonet.org.nz/fdsnws/event/1/query, which answers with a
// QuakeML 1.2 document. Each <event> carries several competing solutions:
//
//	<event publicID="smi:nz.org.geonet/Event/2016p858000">
//	  <preferredOriginID>smi:nz.org.geonet/Origin/abc</preferredOriginID>
//	  <preferredMagnitudeID>smi:nz.org.geonet/Magnitude/M</preferredMagnitudeID>
//	  <origin publicID="...">  time, latitude, longitude, depth  </origin>
//	  <magnitude publicID="..."> mag </magnitude>
//	</event>
//
// # Conventions
//
// Identifiers:
//
//	publicID is a URI-like resource id. The canonical event id is the path
//	segment after the last "/": "smi:nz.org.geonet/Event/2016p858000" → "2016p858000".
//	Ids without a "/" are used unchanged.
//
// Preferred solutions:
//
//	The origin (or magnitude) whose publicID equals the preferred reference wins.
//	A missing reference, or one that matches nothing, falls back to the first
//	solution in document order.
//
// Units:
//
//	Times are RFC 3339 UTC, kept at millisecond resolution.
//	Latitude and longitude are decimal degrees.
//	Depth is reported in meters and stored in kilometers.
//	Magnitude is unitless.
//
// Time windows are day offsets relative to a reference event (usually the
// mainshock). Offsets may be negative or fractional.
package domain
