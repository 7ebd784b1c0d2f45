// internal/freight/queries/store.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrier-matching/internal/common/logger"
	"carrier-matching/internal/matching"
	"carrier-matching/internal/models"

	"github.com/lib/pq"
)

// Store is the read-only PostgreSQL implementation of matching.Store.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

var _ matching.Store = (*Store)(nil)

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// timed logs how long a query took at debug level.
func (s *Store) timed(queryType string, start time.Time, rows int) {
	s.logger.Debug("query executed", map[string]interface{}{
		"queryType":     queryType,
		"rowCount":      rows,
		"executionTime": time.Since(start).Milliseconds(),
	})
}

// ==========================
// Loads
// ==========================

func (s *Store) LoadByID(ctx context.Context, id int64) (*models.Load, error) {
	start := time.Now()

	var (
		load        models.Load
		ventureID   sql.NullInt64
		shipperID   sql.NullInt64
		pickupCity  sql.NullString
		pickupState sql.NullString
		dropCity    sql.NullString
		dropState   sql.NullString
		miles       sql.NullFloat64
		equipment   sql.NullString
		bonusesJSON []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, venture_id, shipper_id, pickup_city, pickup_state,
		       drop_city, drop_state, miles, equipment_type, preferred_bonuses_json
		FROM loads
		WHERE id = $1`, id).Scan(
		&load.ID, &ventureID, &shipperID,
		&pickupCity, &pickupState, &dropCity, &dropState,
		&miles, &equipment, &bonusesJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %d: %w", id, matching.ErrLoadNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query load %d: %w", id, err)
	}

	load.VentureID = nullInt64(ventureID)
	load.ShipperID = nullInt64(shipperID)
	load.PickupCity = pickupCity.String
	load.PickupState = pickupState.String
	load.DropCity = dropCity.String
	load.DropState = dropState.String
	load.Miles = nullFloat(miles)
	load.EquipmentType = equipment.String
	load.Bonuses = models.ParseLoadBonuses(bonusesJSON)

	s.timed("load_by_id", start, 1)
	return &load, nil
}

// LaneDeliveries groups delivered loads per carrier and lane. Ends are
// returned as stored; blank cities come back as empty strings.
func (s *Store) LaneDeliveries(ctx context.Context, q matching.LaneDeliveryQuery) ([]models.LaneDeliveryGroup, error) {
	if len(q.CarrierIDs) == 0 {
		return nil, nil
	}
	start := time.Now()

	statuses := q.Statuses
	if len(statuses) == 0 {
		statuses = matching.LaneHistoryStatuses
	}

	query := `
		SELECT carrier_id, pickup_city, pickup_state, drop_city, drop_state,
		       COUNT(id), MAX(actual_delivery_at)
		FROM loads
		WHERE carrier_id = ANY($1)
		  AND load_status = ANY($2)
		  AND actual_delivery_at >= $3`
	args := []interface{}{pq.Array(q.CarrierIDs), pq.Array(statuses), q.Since}
	if q.VentureID != nil {
		query += `
		  AND venture_id = $4`
		args = append(args, *q.VentureID)
	}
	query += `
		GROUP BY carrier_id, pickup_city, pickup_state, drop_city, drop_state`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lane deliveries: %w", err)
	}
	defer rows.Close()

	var out []models.LaneDeliveryGroup
	for rows.Next() {
		var (
			g                                            models.LaneDeliveryGroup
			pickupCity, pickupState, dropCity, dropState sql.NullString
			last                                         sql.NullTime
		)
		if err := rows.Scan(&g.CarrierID, &pickupCity, &pickupState, &dropCity, &dropState, &g.Count, &last); err != nil {
			return nil, fmt.Errorf("scan lane delivery: %w", err)
		}
		g.PickupCity = pickupCity.String
		g.PickupState = pickupState.String
		g.DropCity = dropCity.String
		g.DropState = dropState.String
		if last.Valid {
			t := last.Time
			g.LastDeliveredAt = &t
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lane deliveries: %w", err)
	}

	s.timed("lane_deliveries", start, len(out))
	return out, nil
}

// ==========================
// Carriers
// ==========================

const carrierColumns = `id, name, active, blocked, disqualified, compliance_status,
		       fmcsa_authorized, fmcsa_last_sync_at, on_time_percentage, power_units,
		       recent_loads_delivered, equipment_types, phone, email, city, state,
		       mc_number, dot_number`

// carrierPoolClause renders a CarrierFilter as a WHERE clause.
func carrierPoolClause(f matching.CarrierFilter) (string, []interface{}) {
	clauses := []string{
		"active = TRUE",
		"blocked = FALSE",
		"disqualified IS NOT TRUE",
		"compliance_status = $1",
	}
	switch f.Fmcsa {
	case matching.FmcsaAuthorizedOnly:
		clauses = append(clauses, "fmcsa_authorized IS TRUE")
	case matching.FmcsaNotRevoked:
		clauses = append(clauses, "fmcsa_authorized IS NOT FALSE")
	}
	return strings.Join(clauses, " AND "), []interface{}{f.ComplianceStatus}
}

// EligibleCarriers returns the base pool ordered by id, which is the
// enumeration order ties are broken on.
func (s *Store) EligibleCarriers(ctx context.Context, filter matching.CarrierFilter) ([]models.Carrier, error) {
	start := time.Now()
	where, args := carrierPoolClause(filter)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+carrierColumns+" FROM carriers WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("query eligible carriers: %w", err)
	}
	defer rows.Close()

	var out []models.Carrier
	for rows.Next() {
		c, err := scanCarrier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan carrier: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carriers: %w", err)
	}

	s.timed("eligible_carriers", start, len(out))
	return out, nil
}

func scanCarrier(rows *sql.Rows) (models.Carrier, error) {
	var (
		c                                     models.Carrier
		disqualified, authorized              sql.NullBool
		lastSync                              sql.NullTime
		onTime                                sql.NullFloat64
		powerUnits, recentLoads               sql.NullInt64
		equipment, phone, email, city, state  sql.NullString
		mcNumber, dotNumber, compliance, name sql.NullString
	)
	err := rows.Scan(
		&c.ID, &name, &c.Active, &c.Blocked, &disqualified, &compliance,
		&authorized, &lastSync, &onTime, &powerUnits,
		&recentLoads, &equipment, &phone, &email, &city, &state,
		&mcNumber, &dotNumber,
	)
	if err != nil {
		return c, err
	}

	c.Name = name.String
	c.Disqualified = nullBool(disqualified)
	c.ComplianceStatus = compliance.String
	c.FmcsaAuthorized = nullBool(authorized)
	if lastSync.Valid {
		t := lastSync.Time
		c.FmcsaLastSyncAt = &t
	}
	c.OnTimePercentage = nullFloat(onTime)
	c.PowerUnits = nullInt(powerUnits)
	c.RecentLoadsDelivered = nullInt(recentLoads)
	c.EquipmentTypes = equipment.String
	c.Phone = phone.String
	c.Email = email.String
	c.City = city.String
	c.State = state.String
	c.McNumber = mcNumber.String
	c.DotNumber = dotNumber.String
	return c, nil
}

func (s *Store) VentureStats(ctx context.Context, ventureID int64, carrierIDs []int64) ([]models.CarrierVentureStats, error) {
	if len(carrierIDs) == 0 {
		return nil, nil
	}
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT venture_id, carrier_id, on_time_pct, recent_loads_delivered, lane_affinity_score
		FROM carrier_venture_stats
		WHERE venture_id = $1 AND carrier_id = ANY($2)`, ventureID, pq.Array(carrierIDs))
	if err != nil {
		return nil, fmt.Errorf("query venture stats: %w", err)
	}
	defer rows.Close()

	var out []models.CarrierVentureStats
	for rows.Next() {
		var (
			vs          models.CarrierVentureStats
			onTime      sql.NullFloat64
			recentLoads sql.NullInt64
			affinity    sql.NullFloat64
		)
		if err := rows.Scan(&vs.VentureID, &vs.CarrierID, &onTime, &recentLoads, &affinity); err != nil {
			return nil, fmt.Errorf("scan venture stats: %w", err)
		}
		vs.OnTimePct = nullFloat(onTime)
		vs.RecentLoadsDelivered = nullInt(recentLoads)
		vs.LaneAffinityScore = nullFloat(affinity)
		out = append(out, vs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venture stats: %w", err)
	}

	s.timed("venture_stats", start, len(out))
	return out, nil
}

func (s *Store) PrimaryDispatchers(ctx context.Context, carrierIDs []int64) ([]models.CarrierDispatcher, error) {
	if len(carrierIDs) == 0 {
		return nil, nil
	}
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, carrier_id, name, role, phone, mobile, email, preferred_contact_method
		FROM carrier_dispatchers
		WHERE carrier_id = ANY($1) AND is_primary = TRUE
		ORDER BY carrier_id, id`, pq.Array(carrierIDs))
	if err != nil {
		return nil, fmt.Errorf("query primary dispatchers: %w", err)
	}
	defer rows.Close()

	var out []models.CarrierDispatcher
	for rows.Next() {
		var (
			d                                    models.CarrierDispatcher
			name, role, phone, mobile, email, pc sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.CarrierID, &name, &role, &phone, &mobile, &email, &pc); err != nil {
			return nil, fmt.Errorf("scan dispatcher: %w", err)
		}
		d.Name = name.String
		d.Role = role.String
		d.Phone = phone.String
		d.Mobile = mobile.String
		d.Email = email.String
		d.PreferredContactMethod = pc.String
		d.IsPrimary = true
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatchers: %w", err)
	}

	s.timed("primary_dispatchers", start, len(out))
	return out, nil
}

// ==========================
// Preferred Lanes
// ==========================

// laneClause renders one lane as "(origin = $n AND destination = $m)",
// omitting blank ends so they match any stored value. A blank lane renders
// as TRUE. next is the first placeholder number to use.
func laneClause(lane models.Lane, next int) (string, []interface{}) {
	var parts []string
	var args []interface{}
	if lane.Origin != "" {
		parts = append(parts, fmt.Sprintf("origin = $%d", next+len(args)))
		args = append(args, lane.Origin)
	}
	if lane.Destination != "" {
		parts = append(parts, fmt.Sprintf("destination = $%d", next+len(args)))
		args = append(args, lane.Destination)
	}
	if len(parts) == 0 {
		return "TRUE", nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", args
}

// CarrierPreferredLanes returns every lane row of the given carriers that
// covers any of the wanted lanes. A blank lane covers every row.
func (s *Store) CarrierPreferredLanes(ctx context.Context, carrierIDs []int64, lanes []models.Lane) ([]models.CarrierPreferredLane, error) {
	if len(carrierIDs) == 0 || len(lanes) == 0 {
		return nil, nil
	}

	args := []interface{}{pq.Array(carrierIDs)}
	var ors []string
	for _, lane := range lanes {
		clause, laneArgs := laneClause(lane, len(args)+1)
		ors = append(ors, clause)
		args = append(args, laneArgs...)
	}
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, carrier_id, origin, destination, bonus
		FROM carrier_preferred_lanes
		WHERE carrier_id = ANY($1) AND (`+strings.Join(ors, " OR ")+`)
		ORDER BY carrier_id, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query carrier preferred lanes: %w", err)
	}
	defer rows.Close()

	var out []models.CarrierPreferredLane
	for rows.Next() {
		var (
			l                   models.CarrierPreferredLane
			origin, destination sql.NullString
			bonus               sql.NullFloat64
		)
		if err := rows.Scan(&l.ID, &l.CarrierID, &origin, &destination, &bonus); err != nil {
			return nil, fmt.Errorf("scan carrier preferred lane: %w", err)
		}
		l.Origin = origin.String
		l.Destination = destination.String
		l.Bonus = nullFloat(bonus)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate carrier preferred lanes: %w", err)
	}

	s.timed("carrier_preferred_lanes", start, len(out))
	return out, nil
}

// ShipperPreferredLane returns the first lane row of the shipper covering
// lane, or nil when there is none.
func (s *Store) ShipperPreferredLane(ctx context.Context, shipperID int64, lane models.Lane) (*models.ShipperPreferredLane, error) {
	clause, laneArgs := laneClause(lane, 2)
	start := time.Now()

	var (
		l                   models.ShipperPreferredLane
		origin, destination sql.NullString
		bonus               sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, shipper_id, origin, destination, bonus
		FROM shipper_preferred_lanes
		WHERE shipper_id = $1 AND `+clause+`
		ORDER BY id
		LIMIT 1`, append([]interface{}{shipperID}, laneArgs...)...).Scan(
		&l.ID, &l.ShipperID, &origin, &destination, &bonus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query shipper preferred lane: %w", err)
	}
	l.Origin = origin.String
	l.Destination = destination.String
	l.Bonus = nullFloat(bonus)

	s.timed("shipper_preferred_lane", start, 1)
	return &l, nil
}

// ==========================
// Null helpers
// ==========================

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullBool(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Bool
	return &b
}
