package accessgate

import (
	"context"

	"github.com/physika-edu/physika-lms/internal/catalog"
)

// Result of an access check. CurrentIP is reported even when access is
// granted so callers can show the detected address on denial.
type Result struct {
	Restricted bool   `json:"restricted"`
	CurrentIP  string `json:"current_ip"`
}

// Gate enforces the classroom network-location policy. Only classwork
// collections are ever restricted; homework bypasses the policy entirely.
// The classroom row is read fresh on every check.
type Gate struct {
	classrooms catalog.Store
	resolver   AddressResolver
}

func New(classrooms catalog.Store, resolver AddressResolver) *Gate {
	return &Gate{classrooms: classrooms, resolver: resolver}
}

func (g *Gate) Check(ctx context.Context, classroomID string, category catalog.Category, clientIP string) (Result, error) {
	current := g.resolver.Resolve(ctx, clientIP)
	if category.Normalize() != catalog.CategoryClasswork {
		return Result{Restricted: false, CurrentIP: current}, nil
	}
	room, err := g.classrooms.GetClassroom(ctx, classroomID)
	if err != nil {
		return Result{}, err
	}
	if !room.IPCheckEnabled || room.AllowedIP == "" {
		return Result{Restricted: false, CurrentIP: current}, nil
	}
	return Result{Restricted: current != room.AllowedIP, CurrentIP: current}, nil
}
