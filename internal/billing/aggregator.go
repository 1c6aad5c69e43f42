package billing

import "fmt"

// AggregateOrders groups pre-summed order rows by fuel, then by vehicle
// within each fuel. Group order follows first appearance in the input, so
// the output is deterministic for a given input order; callers wanting a
// canonical layout pre-sort rows by fuel name and vehicle code.
//
// A row referencing a fuel or vehicle that cannot be resolved to a name or
// code aborts the whole aggregation with a DataIntegrityError rather than
// dropping the row silently.
func AggregateOrders(orgID int64, month, year int, rows []RawOrderRow) ([]*FuelGroup, error) {
	groups := make([]*FuelGroup, 0, 4)
	byFuel := make(map[int64]*FuelGroup, 4)
	byVehicle := make(map[int64]map[int64]*VehicleRow, 4)

	for _, row := range rows {
		if row.FuelID <= 0 || row.FuelName == "" {
			return nil, &DataIntegrityError{
				OrgID: orgID, Month: month, Year: year,
				Reason: fmt.Sprintf("order row references unresolvable fuel %d", row.FuelID),
			}
		}
		if row.VehicleID <= 0 || row.VehicleCode == "" {
			return nil, &DataIntegrityError{
				OrgID: orgID, Month: month, Year: year,
				Reason: fmt.Sprintf("order row references unresolvable vehicle %d", row.VehicleID),
			}
		}

		group, ok := byFuel[row.FuelID]
		if !ok {
			group = &FuelGroup{
				FuelID:    row.FuelID,
				Name:      row.FuelName,
				UnitPrice: row.FuelPrice,
			}
			byFuel[row.FuelID] = group
			byVehicle[row.FuelID] = make(map[int64]*VehicleRow, 8)
			groups = append(groups, group)
		}

		vehicles := byVehicle[row.FuelID]
		vehicle, ok := vehicles[row.VehicleID]
		if !ok {
			vehicle = &VehicleRow{VehicleID: row.VehicleID, Code: row.VehicleCode}
			vehicles[row.VehicleID] = vehicle
			group.Vehicles = append(group.Vehicles, vehicle)
		}

		vehicle.TotalQty += row.Quantity
		vehicle.TotalPrice += row.Price
		vehicle.OrderCount += row.Orders
		vehicle.cells = append(vehicle.cells, dayCell{day: row.Day, qty: row.Quantity})

		group.TotalQty += row.Quantity
		group.TotalPrice += row.Price
	}
	return groups, nil
}
