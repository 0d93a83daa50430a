package ontology

import (
	"encoding/json"

	"github.com/ontoforge/ontology-core/pkg/apperror"
)

// The cache stores serialized objects; the closed kind enum lets cached bytes
// decode back into their concrete types.

func decodeObject(kind Kind, data []byte) (Object, error) {
	switch kind {
	case KindOrganization:
		return decodeInto[Organization](data)
	case KindMember:
		return decodeInto[Member](data)
	case KindDepartment:
		return decodeInto[Department](data)
	case KindProject:
		return decodeInto[Project](data)
	case KindModule:
		return decodeInto[Module](data)
	case KindEntity:
		return decodeInto[Entity](data)
	case KindTask:
		return decodeInto[Task](data)
	}
	return nil, apperror.ErrUnknownType.WithMessagef("unknown object type %q", kind)
}

func decodeInto[T any](data []byte) (Object, error) {
	rec := new(T)
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, err
	}
	return any(rec).(Object), nil
}

// DecodeInput parses a wire-format creation payload into the kind's typed
// input struct.
func DecodeInput(kind Kind, data []byte) (Input, error) {
	var in Input
	var err error
	switch kind {
	case KindOrganization:
		in, err = unmarshalInput[CreateOrganizationInput](data)
	case KindMember:
		in, err = unmarshalInput[CreateMemberInput](data)
	case KindDepartment:
		in, err = unmarshalInput[CreateDepartmentInput](data)
	case KindProject:
		in, err = unmarshalInput[CreateProjectInput](data)
	case KindModule:
		in, err = unmarshalInput[CreateModuleInput](data)
	case KindEntity:
		in, err = unmarshalInput[CreateEntityInput](data)
	case KindTask:
		in, err = unmarshalInput[CreateTaskInput](data)
	default:
		return nil, apperror.ErrUnknownType.WithMessagef("unknown object type %q", kind)
	}
	if err != nil {
		return nil, apperror.NewBadRequest("malformed " + string(kind) + " payload")
	}
	return in, nil
}

// DecodePatch parses a wire-format partial-update payload into the kind's
// typed patch struct.
func DecodePatch(kind Kind, data []byte) (Patch, error) {
	var p Patch
	var err error
	switch kind {
	case KindOrganization:
		p, err = unmarshalPatch[OrganizationPatch](data)
	case KindMember:
		p, err = unmarshalPatch[MemberPatch](data)
	case KindDepartment:
		p, err = unmarshalPatch[DepartmentPatch](data)
	case KindProject:
		p, err = unmarshalPatch[ProjectPatch](data)
	case KindModule:
		p, err = unmarshalPatch[ModulePatch](data)
	case KindEntity:
		p, err = unmarshalPatch[EntityPatch](data)
	case KindTask:
		p, err = unmarshalPatch[TaskPatch](data)
	default:
		return nil, apperror.ErrUnknownType.WithMessagef("unknown object type %q", kind)
	}
	if err != nil {
		return nil, apperror.NewBadRequest("malformed " + string(kind) + " patch")
	}
	return p, nil
}

func unmarshalInput[T Input](data []byte) (Input, error) {
	var in T
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	return in, nil
}

func unmarshalPatch[T Patch](data []byte) (Patch, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeObjects(kind Kind, data []byte) ([]Object, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	out := make([]Object, len(raws))
	for i, raw := range raws {
		obj, err := decodeObject(kind, raw)
		if err != nil {
			return nil, err
		}
		out[i] = obj
	}
	return out, nil
}
