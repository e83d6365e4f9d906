package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type personAttrs struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func decodePerson(res resource) (Person, error) {
	var attrs personAttrs
	if err := json.Unmarshal(res.Attributes, &attrs); err != nil {
		return Person{}, fmt.Errorf("decode person %s: %w", res.ID, err)
	}
	name := attrs.Name
	if name == "" {
		name = attrs.FirstName + " " + attrs.LastName
	}
	return Person{ID: res.ID, Name: name, FirstName: attrs.FirstName, LastName: attrs.LastName}, nil
}

// FindPerson searches the directory roster by name.
func (c *Client) FindPerson(ctx context.Context, name string) ([]Person, error) {
	params := url.Values{}
	params.Set("where[search_name]", name)
	data, _, err := c.getAll(ctx, "/people/v2/people", params)
	if err != nil {
		return nil, err
	}
	people := make([]Person, 0, len(data))
	for _, res := range data {
		p, err := decodePerson(res)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}

// PersonDetails loads the full contact record for one person,
// including emails, phone numbers and addresses.
func (c *Client) PersonDetails(ctx context.Context, personID string) (PersonDetails, error) {
	params := url.Values{}
	params.Set("include", "emails,phone_numbers,addresses")
	env, err := c.get(ctx, "/people/v2/people/"+personID, params)
	if err != nil {
		return PersonDetails{}, err
	}
	main, err := decodeResources(env.Data)
	if err != nil {
		return PersonDetails{}, err
	}
	if len(main) == 0 {
		return PersonDetails{}, fmt.Errorf("person %s: not found", personID)
	}
	person, err := decodePerson(main[0])
	if err != nil {
		return PersonDetails{}, err
	}

	details := PersonDetails{Person: person}
	for _, inc := range env.Included {
		switch inc.Type {
		case "Email":
			var e struct {
				Address  string `json:"address"`
				Location string `json:"location"`
				Primary  bool   `json:"primary"`
			}
			if err := json.Unmarshal(inc.Attributes, &e); err != nil {
				return PersonDetails{}, fmt.Errorf("decode email: %w", err)
			}
			details.Emails = append(details.Emails, Email(e))
		case "PhoneNumber":
			var p struct {
				Number  string `json:"number"`
				Carrier string `json:"carrier"`
				Primary bool   `json:"primary"`
			}
			if err := json.Unmarshal(inc.Attributes, &p); err != nil {
				return PersonDetails{}, fmt.Errorf("decode phone: %w", err)
			}
			details.Phones = append(details.Phones, Phone{Number: p.Number, Kind: p.Carrier, Primary: p.Primary})
		case "Address":
			var a struct {
				Street  string `json:"street"`
				City    string `json:"city"`
				State   string `json:"state"`
				Zip     string `json:"zip"`
				Primary bool   `json:"primary"`
			}
			if err := json.Unmarshal(inc.Attributes, &a); err != nil {
				return PersonDetails{}, fmt.Errorf("decode address: %w", err)
			}
			details.Addresses = append(details.Addresses, Address(a))
		case "TeamPosition":
			var t struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(inc.Attributes, &t); err == nil && t.Name != "" {
				details.Positions = append(details.Positions, t.Name)
			}
		}
	}
	return details, nil
}

// rosterPeople lists everyone on the scheduling side of the directory.
func (c *Client) rosterPeople(ctx context.Context) ([]Person, error) {
	data, _, err := c.getAll(ctx, "/services/v2/people", nil)
	if err != nil {
		return nil, err
	}
	people := make([]Person, 0, len(data))
	for _, res := range data {
		p, err := decodePerson(res)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}
	return people, nil
}
