package kernel

// pcbAsignar saca una entrada de la pila de indices libres.
func (k *Kernel) pcbAsignar() *PCB {
	n := len(k.pcbsLibres)
	if n == 0 {
		return nil
	}
	i := k.pcbsLibres[n-1]
	k.pcbsLibres = k.pcbsLibres[:n-1]

	pcb := &k.tabla[i]
	*pcb = PCB{indice: i, Estado: EstadoNuevo}
	return pcb
}

func (k *Kernel) pcbLiberar(pcb *PCB) {
	i := pcb.indice
	*pcb = PCB{indice: i, Estado: EstadoLibre}
	k.pcbsLibres = append(k.pcbsLibres, i)
}

// BuscarPCB recorre la tabla buscando un proceso vivo con ese pid.
func (k *Kernel) BuscarPCB(pid Pid) *PCB {
	for i := range k.tabla {
		pcb := &k.tabla[i]
		if pcb.Estado != EstadoLibre && pcb.Pid == pid {
			return pcb
		}
	}
	return nil
}

// PCBsLibres es la cantidad de entradas de la tabla sin usar.
func (k *Kernel) PCBsLibres() int { return len(k.pcbsLibres) }
