package catalog

// DedupeServices keeps the first row for every composite key, in input
// order.
func DedupeServices(services []Service) []Service {
	seen := make(map[ServiceKey]struct{}, len(services))
	out := make([]Service, 0, len(services))

	for _, s := range services {
		k := s.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// EffectiveGender is the service filter to query with. A selected barber
// with a strict gender wins over the client's choice.
func EffectiveGender(chosen Gender, barber *Barber) Gender {
	if barber != nil {
		if g, ok := barber.ServiceGender(); ok {
			return g
		}
	}
	return chosen
}

// BarbersForService restricts the roster to barbers that serve the
// service's gender. UNISEX and unset services are open to everyone.
func BarbersForService(barbers []Barber, service *Service) []Barber {
	if service == nil {
		return barbers
	}

	var allowed Gender
	switch service.Gender {
	case GenderMale, GenderFemale:
		allowed = service.Gender
	default:
		return barbers
	}

	out := make([]Barber, 0, len(barbers))
	for _, b := range barbers {
		if b.Gender == allowed || b.Gender == GenderBoth {
			out = append(out, b)
		}
	}
	return out
}

func FindService(services []Service, id string) (Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func FindServiceByKey(services []Service, key ServiceKey) (Service, bool) {
	for _, s := range services {
		if s.Key() == key {
			return s, true
		}
	}
	return Service{}, false
}

func FindBarber(barbers []Barber, id string) (Barber, bool) {
	for _, b := range barbers {
		if b.ID == id {
			return b, true
		}
	}
	return Barber{}, false
}
