package order

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrDriverAlreadyAssigned is returned when assigning a driver to an order
	// that already carries an active assignment. At most one active assignment
	// may exist per order.
	ErrDriverAlreadyAssigned = errors.New("order already has an active driver assignment")

	// ErrNoDriverAssigned is returned when a tracking operation requires an
	// assignment that does not exist.
	ErrNoDriverAssigned = errors.New("order has no driver assignment")

	// ErrTotalAmountIsInvalid is returned for non-positive order totals.
	ErrTotalAmountIsInvalid = errs.NewValueIsInvalidError("totalAmount")
)

// RoutePoint is one timestamped position in a driver's delivery trail.
type RoutePoint struct {
	Point kernel.GeoPoint
	At    time.Time
}

// DriverAssignment records which agent services the order and the position
// trail reported while doing so. The route is append-only.
type DriverAssignment struct {
	driverID        kernel.UUID
	assignedAt      time.Time
	assignedBy      string
	currentLocation kernel.GeoPoint
	route           []RoutePoint
}

// DriverID returns the assigned agent's identifier.
func (a *DriverAssignment) DriverID() kernel.UUID {
	return a.driverID
}

// AssignedAt returns when the assignment was made.
func (a *DriverAssignment) AssignedAt() time.Time {
	return a.assignedAt
}

// AssignedBy returns the algorithm or actor that made the assignment.
func (a *DriverAssignment) AssignedBy() string {
	return a.assignedBy
}

// CurrentLocation returns the agent's last reported position. The zero value
// means no position has been reported yet; kernel.DistanceKm treats it as an
// unknown (+Inf) distance.
func (a *DriverAssignment) CurrentLocation() kernel.GeoPoint {
	return a.currentLocation
}

// Route returns a copy of the reported position trail in report order.
func (a *DriverAssignment) Route() []RoutePoint {
	route := make([]RoutePoint, len(a.route))
	copy(route, a.route)
	return route
}

// RestoreDriverAssignment reconstructs an assignment from persistence.
func RestoreDriverAssignment(
	driverID kernel.UUID,
	assignedAt time.Time,
	assignedBy string,
	currentLocation kernel.GeoPoint,
	route []RoutePoint,
) (*DriverAssignment, error) {
	if err := driverID.Validate(); err != nil {
		return nil, err
	}

	return &DriverAssignment{
		driverID:        driverID,
		assignedAt:      assignedAt,
		assignedBy:      assignedBy,
		currentLocation: currentLocation,
		route:           route,
	}, nil
}

// Delivery carries the destination and timing details of an order.
type Delivery struct {
	destination      kernel.GeoPoint
	scheduledFor     *time.Time
	estimatedArrival *time.Time
	attempts         int
}

// Destination returns the delivery coordinates.
func (d Delivery) Destination() kernel.GeoPoint {
	return d.destination
}

// ScheduledFor returns the requested delivery slot, nil when unscheduled.
func (d Delivery) ScheduledFor() *time.Time {
	return d.scheduledFor
}

// EstimatedArrival returns the current ETA, nil before the first estimate.
func (d Delivery) EstimatedArrival() *time.Time {
	return d.estimatedArrival
}

// Attempts returns how many delivery attempts have been made.
func (d Delivery) Attempts() int {
	return d.attempts
}

// RestoreDelivery reconstructs delivery details from persistence.
func RestoreDelivery(
	destination kernel.GeoPoint,
	scheduledFor *time.Time,
	estimatedArrival *time.Time,
	attempts int,
) Delivery {
	return Delivery{
		destination:      destination,
		scheduledFor:     scheduledFor,
		estimatedArrival: estimatedArrival,
		attempts:         attempts,
	}
}

// Order is the aggregate root for a fulfillment order. It owns the status
// state machine with its append-only history, the single active driver
// assignment, and the delivery details used by routing and tracking.
//
// Invariants:
//   - status is mutated only through UpdateStatus, which appends a history
//     entry before overwriting the current status
//   - the final history entry's status always equals the current status
//   - at most one active driver assignment exists per order
//   - terminal statuses accept no further transitions
//
// Example:
//
//	dest, _ := kernel.NewGeoPoint(-1.30, 36.80)
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, dest, 1250)
//	if err != nil {
//	    // invalid construction parameters
//	}
//	_ = o.UpdateStatus(order.Confirmed, "payment captured", "")
type Order struct {
	id          kernel.UUID
	customerID  kernel.UUID
	outletID    *kernel.UUID
	status      Status
	history     []StatusChange
	assignment  *DriverAssignment
	delivery    Delivery
	totalAmount float64

	isConstructed bool
}

// NewOrder creates a fresh order in Pending status with a seeded history
// entry, so the final-history-equals-current invariant holds from birth.
//
// Parameters:
//   - id: unique order identifier
//   - customerID: the ordering customer
//   - destination: validated delivery coordinates
//   - totalAmount: order total, must be positive
func NewOrder(id kernel.UUID, customerID kernel.UUID, destination kernel.GeoPoint, totalAmount float64) (*Order, error) {
	o := &Order{
		status:        Pending,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setDestination(destination),
		o.setTotalAmount(totalAmount),
	); err != nil {
		return nil, err
	}

	o.history = []StatusChange{{
		Status:    Pending,
		At:        time.Now().UTC(),
		Note:      "order placed",
		Automated: true,
	}}

	return o, nil
}

// RestoreOrder reconstructs an order aggregate from persistence, preserving
// its status, history, assignment and delivery state exactly as stored.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	outletID *kernel.UUID,
	status Status,
	history []StatusChange,
	assignment *DriverAssignment,
	delivery Delivery,
	totalAmount float64,
) (*Order, error) {
	o := &Order{
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		status.Validate(),
		o.setTotalAmount(totalAmount),
	); err != nil {
		return nil, err
	}

	o.outletID = outletID
	o.status = status
	o.history = history
	o.assignment = assignment
	o.delivery = delivery

	return o, nil
}

// Validate ensures the Order was created through a constructor.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// CustomerID returns the ordering customer's identifier.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// OutletID returns the fulfilling outlet, nil before routing.
func (o *Order) OutletID() *kernel.UUID {
	return o.outletID
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// History returns a copy of the append-only status history in append order.
func (o *Order) History() []StatusChange {
	history := make([]StatusChange, len(o.history))
	copy(history, o.history)
	return history
}

// Assignment returns the active driver assignment, nil before routing.
func (o *Order) Assignment() *DriverAssignment {
	return o.assignment
}

// Delivery returns the delivery details of the order.
func (o *Order) Delivery() Delivery {
	return o.delivery
}

// TotalAmount returns the order total.
func (o *Order) TotalAmount() float64 {
	return o.totalAmount
}

// UpdateStatus is the only sanctioned mutator of the order's status.
// It validates the transition, appends a history entry and then overwrites
// the current status. An empty actor marks the change as automated.
//
// Returns an error when the new status is invalid or the current status is
// terminal; the order is left unchanged on error.
func (o *Order) UpdateStatus(newStatus Status, note string, actor string) error {
	next, err := o.status.TransitionTo(newStatus)
	if err != nil {
		return err
	}

	o.history = append(o.history, StatusChange{
		Status:    next,
		At:        time.Now().UTC(),
		Note:      note,
		Actor:     actor,
		Automated: actor == "",
	})
	o.status = next
	return nil
}

// AssignDriver records the routing decision on the order: the fulfilling
// outlet and the single active driver assignment.
//
// Returns ErrDriverAlreadyAssigned when an assignment already exists;
// reassignment requires releasing the previous driver first.
func (o *Order) AssignDriver(outletID kernel.UUID, driverID kernel.UUID, assignedBy string) error {
	if err := errors.Join(outletID.Validate(), driverID.Validate()); err != nil {
		return err
	}

	if o.assignment != nil {
		return ErrDriverAlreadyAssigned
	}

	id := outletID
	o.outletID = &id
	o.assignment = &DriverAssignment{
		driverID:   driverID,
		assignedAt: time.Now().UTC(),
		assignedBy: assignedBy,
	}
	return nil
}

// RecordDriverLocation appends a position report to the assignment's route
// trail and updates the current location. Requires an active assignment and a
// constructed point.
func (o *Order) RecordDriverLocation(point kernel.GeoPoint, at time.Time) error {
	if err := point.Validate(); err != nil {
		return err
	}

	if o.assignment == nil {
		return ErrNoDriverAssigned
	}

	o.assignment.route = append(o.assignment.route, RoutePoint{Point: point, At: at})
	o.assignment.currentLocation = point
	return nil
}

// SetEstimatedArrival stores a recomputed ETA.
func (o *Order) SetEstimatedArrival(eta time.Time) {
	t := eta
	o.delivery.estimatedArrival = &t
}

// ScheduleFor stores the requested delivery slot.
func (o *Order) ScheduleFor(slot time.Time) {
	t := slot
	o.delivery.scheduledFor = &t
}

// RegisterDeliveryAttempt increments the delivery attempt counter.
// Called when the order transitions to FailedDelivery.
func (o *Order) RegisterDeliveryAttempt() {
	o.delivery.attempts++
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	o.id = id
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}

	o.customerID = customerID
	return nil
}

func (o *Order) setDestination(destination kernel.GeoPoint) error {
	if err := destination.Validate(); err != nil {
		return err
	}

	o.delivery.destination = destination
	return nil
}

func (o *Order) setTotalAmount(totalAmount float64) error {
	if totalAmount <= 0 {
		return ErrTotalAmountIsInvalid
	}

	o.totalAmount = totalAmount
	return nil
}
