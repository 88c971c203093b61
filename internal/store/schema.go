package store

// SchemaDescription is the fixed, externally-owned schema contract handed
// to the SQL translation prompt. It must stay in sync with the import
// pipeline's DDL.
const SchemaDescription = `
Table: resale_prices
- id (Integer, primary key)
- month (Date): Month of resale transaction
- town (String): Town/region of the flat (e.g., ANG MO KIO, BEDOK)
- flat_type (String): Type of flat (e.g., 3 ROOM, 4 ROOM)
- block (String): Block number
- street_name (String): Street name
- storey_range (String): Range of floors (e.g., 01 TO 03, 10 TO 12)
- floor_area_sqm (Float): Floor area in square meters
- flat_model (String): Model of the flat (e.g., IMPROVED, NEW GENERATION)
- lease_commence_date (Integer): Year the lease commenced
- resale_price (Float): Price of the flat in Singapore dollars
- remaining_lease_years (Float): Years of lease remaining

Table: completion_status
- id (Integer, primary key)
- financial_year (Integer): Financial year of completion
- town_or_estate (String): Town or estate name
- status (String): Status of completion
- no_of_units (Integer): Number of units completed
`
