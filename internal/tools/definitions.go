package tools

// Tool names exposed to the conversational runtime.
const (
	ListDoctorsAndServices  = "list_doctors_and_services"
	CurrentTimeDate         = "current_time_date"
	CheckDoctorAvailability = "check_doctor_availability"
	BookAppointment         = "book_appointment"
	CancelAppointment       = "cancel_appointment"
)

// Param describes one string argument of a tool.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Definition is the schema a runtime needs to offer a tool to its model.
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"-"`
}

// JSONSchema renders the parameters as a JSON-schema object.
func (d Definition) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := []string{}
	for _, p := range d.Params {
		properties[p.Name] = map[string]any{
			"type":        "string",
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

var definitions = []Definition{
	{
		Name:        ListDoctorsAndServices,
		Description: "List the clinic's doctors and the services offered with price and duration.",
	},
	{
		Name:        CurrentTimeDate,
		Description: "Get the current date and time in the clinic's timezone as an ISO 8601 timestamp.",
	},
	{
		Name:        CheckDoctorAvailability,
		Description: "Check whether a doctor is free for the whole window between start_time and end_time. Returns true when free.",
		Params: []Param{
			{Name: "doctor_name", Description: "Doctor name (e.g. Dr.Badr) or specialty", Required: true},
			{Name: "start_time", Description: "Window start, ISO 8601 (e.g. 2025-03-10T14:00:00). Clinic time when no offset is given.", Required: true},
			{Name: "end_time", Description: "Window end, ISO 8601. Must be after start_time.", Required: true},
		},
	},
	{
		Name:        BookAppointment,
		Description: "Book an appointment after confirming the details with the caller. Returns a confirmation with the appointment ID.",
		Params: []Param{
			{Name: "patient_name", Description: "Full name of the patient", Required: true},
			{Name: "patient_phone", Description: "Patient's contact phone number", Required: true},
			{Name: "date", Description: "Appointment date as YYYY-MM-DD", Required: true},
			{Name: "time", Description: "Appointment start time as 24-hour HH:MM", Required: true},
			{Name: "doctor_key", Description: "Doctor name or specialty, e.g. 'general dentistry'", Required: true},
			{Name: "service_key", Description: "Exact service name from the catalog, e.g. 'Cleaning'", Required: true},
		},
	},
	{
		Name:        CancelAppointment,
		Description: "Cancel an existing appointment by its appointment ID.",
		Params: []Param{
			{Name: "appointment_id", Description: "The appointment ID given at booking", Required: true},
		},
	},
}
