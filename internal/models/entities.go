package models

// TableRow is implemented by the four entity row types. Columns must match
// the DDL in the database package; Values must follow the same order.
type TableRow interface {
	TableName() string
	Columns() []string
	Values() []any
}

// Dataset is an ordered collection of rows bound for one table, produced
// by the parser from a single source file.
type Dataset interface {
	TableName() string
	Columns() []string
	Len() int
	Row(i int) []any
}

type rows[T TableRow] []T

func (r rows[T]) TableName() string { var z T; return z.TableName() }
func (r rows[T]) Columns() []string { var z T; return z.Columns() }
func (r rows[T]) Len() int          { return len(r) }
func (r rows[T]) Row(i int) []any   { return r[i].Values() }

// NewDataset wraps a slice of entity rows as a Dataset.
func NewDataset[T TableRow](items []T) Dataset {
	return rows[T](items)
}

// Characteristic is one row of the characteristics table, the root entity
// of an accident. Missing numeric values carry the dataset's -1 sentinel.
type Characteristic struct {
	NumAcc        int64
	Jour          int
	Mois          int
	An            int
	Hrmn          string
	Lum           int
	Dep           string
	Com           string
	Agglomeration int
	Intersec      int
	Atm           int
	Col           int
	Adr           string
	Lat           float64
	Long          float64
}

func (Characteristic) TableName() string { return "characteristics" }

func (Characteristic) Columns() []string {
	return []string{
		"num_acc", "jour", "mois", "an", "hrmn", "lum", "dep", "com",
		"agglomeration", "intersec", "atm", "col", "adr", "lat", "long",
	}
}

func (c Characteristic) Values() []any {
	return []any{
		c.NumAcc, c.Jour, c.Mois, c.An, c.Hrmn, c.Lum, c.Dep, c.Com,
		c.Agglomeration, c.Intersec, c.Atm, c.Col, c.Adr, c.Lat, c.Long,
	}
}

// Location describes the road section of an accident.
type Location struct {
	NumAcc int64
	Catr   int
	Voie   string
	Circ   int
	Nbv    int
	Vosp   int
	Prof   int
	Plan   int
	Surf   int
	Infra  int
	Situ   int
	Vma    int
}

func (Location) TableName() string { return "locations" }

func (Location) Columns() []string {
	return []string{
		"num_acc", "catr", "voie", "circ", "nbv", "vosp", "prof", "plan",
		"surf", "infra", "situ", "vma",
	}
}

func (l Location) Values() []any {
	return []any{
		l.NumAcc, l.Catr, l.Voie, l.Circ, l.Nbv, l.Vosp, l.Prof, l.Plan,
		l.Surf, l.Infra, l.Situ, l.Vma,
	}
}

// Vehicle is one vehicle involved in an accident.
type Vehicle struct {
	NumAcc     int64
	IDVehicule string
	NumVeh     string
	Senc       int
	Catv       int
	Obs        int
	Obsm       int
	Choc       int
	Manv       int
	Motor      int
	Occutc     int
}

func (Vehicle) TableName() string { return "vehicles" }

func (Vehicle) Columns() []string {
	return []string{
		"num_acc", "id_vehicule", "num_veh", "senc", "catv", "obs", "obsm",
		"choc", "manv", "motor", "occutc",
	}
}

func (v Vehicle) Values() []any {
	return []any{
		v.NumAcc, v.IDVehicule, v.NumVeh, v.Senc, v.Catv, v.Obs, v.Obsm,
		v.Choc, v.Manv, v.Motor, v.Occutc,
	}
}

// User is one person involved in an accident, tied to a vehicle.
type User struct {
	NumAcc     int64
	IDVehicule string
	NumVeh     string
	Place      int
	Catu       int
	Grav       int
	Sexe       int
	AnNais     int
	Trajet     int
	Locp       int
	Actp       string
	Etatp      int
}

func (User) TableName() string { return "users" }

func (User) Columns() []string {
	return []string{
		"num_acc", "id_vehicule", "num_veh", "place", "catu", "grav",
		"sexe", "an_nais", "trajet", "locp", "actp", "etatp",
	}
}

func (u User) Values() []any {
	return []any{
		u.NumAcc, u.IDVehicule, u.NumVeh, u.Place, u.Catu, u.Grav,
		u.Sexe, u.AnNais, u.Trajet, u.Locp, u.Actp, u.Etatp,
	}
}
